package server

import (
	"errors"
	"net/http"

	"synapse-console/src/helpers"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		authErr    *helpers.AuthenticationError
		expiredErr *helpers.AuthorizationExpiredError
		netErr     *helpers.NetworkError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &expiredErr):
		return http.StatusUnauthorized
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

// userMessage returns the message meant for the user, without wrapped causes.
func userMessage(err error) string {
	var base interface{ UserMessage() string }
	if errors.As(err, &base) {
		return base.UserMessage()
	}
	return err.Error()
}

// -----------------------------------------------------------------------------

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": userMessage(err)})
}
