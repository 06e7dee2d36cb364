package helpers

import (
	"errors"
	"fmt"

	"synapse-console/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type SynapseError struct {
	Message string
	Cause   error
}

func (e *SynapseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SynapseError) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to a person, without the wrapped cause.
func (e *SynapseError) UserMessage() string {
	return e.Message
}

// Distinct error kinds for errors.As checks.
// AuthenticationError: bad credentials, retry by submitting again.
// AuthorizationExpiredError: the backend rejected the token, a fresh login is required.
// NetworkError: fetch or stream failure, never retried automatically.
// MalformedMessageError: stream payload that is neither a tick nor a signal.
// ConfigurationError: the config file is missing, unreadable or invalid.
type AuthenticationError struct{ SynapseError }
type AuthorizationExpiredError struct{ SynapseError }
type NetworkError struct{ SynapseError }
type MalformedMessageError struct{ SynapseError }
type ConfigurationError struct{ SynapseError }
type DatabaseError struct{ SynapseError }

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{SynapseError{Message: message}}
}

func NewAuthorizationExpiredError() *AuthorizationExpiredError {
	return &AuthorizationExpiredError{SynapseError{Message: "Session expired."}}
}

func NewNetworkError(message string, cause error) *NetworkError {
	return &NetworkError{SynapseError{Message: message, Cause: cause}}
}

func NewMalformedMessageError(cause error) *MalformedMessageError {
	return &MalformedMessageError{SynapseError{Message: "unrecognized stream message", Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{SynapseError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{SynapseError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

// IsAuthorizationExpired reports whether err (or anything it wraps) is an AuthorizationExpiredError
func IsAuthorizationExpired(err error) bool {
	var target *AuthorizationExpiredError
	return errors.As(err, &target)
}

// IsAuthentication reports whether err is an AuthenticationError
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{Logger: log.Named("ErrorHandler")}
}

// -----------------------------------------------------------------------------

// Handle logs err under its kind. Nothing handled here is fatal.
func (e *ErrorHandler) Handle(err error, context string) {
	if err == nil {
		return
	}

	var (
		authErr    *AuthenticationError
		expiredErr *AuthorizationExpiredError
		netErr     *NetworkError
		msgErr     *MalformedMessageError
	)
	switch {
	case errors.As(err, &authErr):
		e.Logger.Warning("Authentication failed in %s: %v", context, err)
	case errors.As(err, &expiredErr):
		e.Logger.Warning("Authorization expired in %s: %v", context, err)
	case errors.As(err, &netErr):
		e.Logger.Error("Network failure in %s: %v", context, err)
	case errors.As(err, &msgErr):
		e.Logger.Debug("Dropped message in %s: %v", context, err)
	default:
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
