package interfaces

// -----------------------------------------------------------------------------
// ITokenStore defines the persisted key-value slot holding the session token.
// -----------------------------------------------------------------------------

type ITokenStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the slot table if needed.
	Initialize() error

	// -----------------------------------------------------------------------------

	// GetToken returns the stored token, or "" when none is held.
	GetToken() (string, error)

	// -----------------------------------------------------------------------------

	// SetToken replaces the stored token.
	SetToken(token string) error

	// -----------------------------------------------------------------------------

	// ClearToken removes the stored token. Clearing an empty slot is not an error.
	ClearToken() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
