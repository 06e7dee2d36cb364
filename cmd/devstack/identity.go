package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"synapse-console/src/models"

	"github.com/gin-gonic/gin"
)

// tokenIssuer hands out opaque bearer tokens for a fixed user table.
type tokenIssuer struct {
	users map[string]string

	mu     sync.RWMutex
	issued map[string]string // token -> username
}

func newTokenIssuer(users map[string]string) *tokenIssuer {
	return &tokenIssuer{users: users, issued: make(map[string]string)}
}

func (t *tokenIssuer) issue(username, password string) (string, bool) {
	want, ok := t.users[username]
	if !ok || want != password {
		return "", false
	}
	buf := make([]byte, 16)
	rand.Read(buf)
	token := hex.EncodeToString(buf)

	t.mu.Lock()
	t.issued[token] = username
	t.mu.Unlock()
	return token, true
}

func (t *tokenIssuer) valid(token string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.issued[token]
	return ok
}

// revoke drops every token, so the next call gets a 401.
func (t *tokenIssuer) revoke() {
	t.mu.Lock()
	t.issued = make(map[string]string)
	t.mu.Unlock()
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// -----------------------------------------------------------------------------
// Identity provider (password grant)
// -----------------------------------------------------------------------------

func identityRouter(tokens *tokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/realms/synapse/protocol/openid-connect/token", func(c *gin.Context) {
		if c.PostForm("grant_type") != "password" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type", "error_description": "Unsupported grant type"})
			return
		}
		token, ok := tokens.issue(c.PostForm("username"), c.PostForm("password"))
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_grant", "error_description": "Invalid user credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "Bearer", "expires_in": 300})
	})

	// lets a developer force the session-expired path
	r.POST("/admin/revoke", func(c *gin.Context) {
		tokens.revoke()
		c.Status(http.StatusNoContent)
	})
	return r
}

// -----------------------------------------------------------------------------
// Model listing API
// -----------------------------------------------------------------------------

var sampleModels = []models.MModel{
	{ID: "dcf-aapl", Name: "AAPL Discounted Cash Flow", Owner: "testuser", Content: json.RawMessage(`"Revenue growth 6%, WACC 8.5%"`)},
	{ID: "lbo-msft", Name: "MSFT Leveraged Buyout", Owner: "testuser", Content: json.RawMessage(`"Entry 12x EBITDA, exit 14x"`)},
	{ID: "comps-vod", Name: "VOD Trading Comparables", Owner: "analyst", Content: json.RawMessage(`"Peer set: ORA, TEF, DTE"`)},
}

func modelsRouter(tokens *tokenIssuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/models", func(c *gin.Context) {
		if !tokens.valid(bearer(c.Request)) {
			c.Status(http.StatusUnauthorized)
			return
		}
		now := time.Now().UTC().Format(time.RFC3339)
		out := make([]models.MModel, len(sampleModels))
		for i, m := range sampleModels {
			m.LastModified = now
			out[i] = m
		}
		c.JSON(http.StatusOK, out)
	})
	return r
}
