package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/network"
)

func newNetwork() *network.AsyncNetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{RequestTimeout: 5}}
	return network.NewAsyncNetworkManager(cfg, logger.NewNopLogger())
}

func TestIdentityLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "password" || r.PostForm.Get("client_id") != "synapse-frontend" {
			t.Errorf("unexpected form %v", r.PostForm)
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.PostForm.Get("username") == "testuser" && r.PostForm.Get("password") == "password":
			w.Write([]byte(`{"access_token":"tok-123","token_type":"Bearer"}`))
		case r.PostForm.Get("username") == "silent":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
		}
	}))
	defer srv.Close()

	client := NewIdentityClient(models.MIdentityConfig{TokenURL: srv.URL, ClientID: "synapse-frontend"}, newNetwork(), logger.NewNopLogger())

	tests := []struct {
		name        string
		username    string
		password    string
		wantToken   string
		wantMessage string
	}{
		{name: "valid credentials", username: "testuser", password: "password", wantToken: "tok-123"},
		{name: "description surfaced verbatim", username: "testuser", password: "wrong", wantMessage: "Invalid user credentials"},
		{name: "fallback message", username: "silent", password: "x", wantMessage: "Authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := client.Login(context.Background(), tt.username, tt.password)
			if tt.wantMessage == "" {
				if err != nil || token != tt.wantToken {
					t.Fatalf("expected token %q, got %q (%v)", tt.wantToken, token, err)
				}
				return
			}

			var authErr *helpers.AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthenticationError, got %T %v", err, err)
			}
			if authErr.Error() != tt.wantMessage {
				t.Errorf("expected %q, got %q", tt.wantMessage, authErr.Error())
			}
		})
	}
}

func TestIdentityUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewIdentityClient(models.MIdentityConfig{TokenURL: url, ClientID: "c"}, newNetwork(), logger.NewNopLogger())
	_, err := client.Login(context.Background(), "u", "p")

	var netErr *helpers.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
}

func TestFetchModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.Write([]byte(`[{"id":"m1","name":"Momentum","owner":"0f3c9a1e-owner","lastModified":"2024-01-01","content":"def run(): pass"}]`))
		case "Bearer numeric":
			w.Write([]byte(`[{"id":7,"name":"Carry","owner":"desk","lastModified":"2024-01-02","content":{"legs":2}}]`))
		case "Bearer expired":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewModelClient(models.MAPIConfig{ModelsURL: srv.URL}, newNetwork(), logger.NewNopLogger())

	t.Run("success", func(t *testing.T) {
		list, err := client.FetchModels(context.Background(), "good")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 1 || list[0].Name != "Momentum" || list[0].LastModified != "2024-01-01" {
			t.Errorf("unexpected models %+v", list)
		}
	})

	t.Run("numeric id and structured content", func(t *testing.T) {
		list, err := client.FetchModels(context.Background(), "numeric")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(list) != 1 || list[0].ID != "7" || list[0].Name != "Carry" {
			t.Fatalf("unexpected models %+v", list)
		}
		if string(list[0].Content) != `{"legs":2}` {
			t.Errorf("content not kept as sent: %s", list[0].Content)
		}
	})

	t.Run("401 means expired", func(t *testing.T) {
		_, err := client.FetchModels(context.Background(), "expired")
		if !helpers.IsAuthorizationExpired(err) {
			t.Fatalf("expected AuthorizationExpiredError, got %T %v", err, err)
		}
		if err.Error() != "Session expired." {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("other status is a fetch failure", func(t *testing.T) {
		_, err := client.FetchModels(context.Background(), "other")
		var netErr *helpers.NetworkError
		if !errors.As(err, &netErr) || err.Error() != "Failed to fetch models" {
			t.Fatalf("expected fetch failure, got %T %v", err, err)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		if _, err := client.FetchModels(context.Background(), ""); err == nil {
			t.Fatal("expected an error without a token")
		}
	})
}
