package interfaces

import (
	"context"

	"synapse-console/src/models"
)

// -----------------------------------------------------------------------------
// IConsoleController is what the presentation surfaces (HTTP, gRPC) may ask of
// the console core.
// -----------------------------------------------------------------------------

type IConsoleController interface {
	// -----------------------------------------------------------------------------
	// Login exchanges credentials, loads models and opens the stream.
	Login(ctx context.Context, username, password string) error

	// -----------------------------------------------------------------------------
	// Logout closes the stream and drops the session. Always succeeds.
	Logout()

	// -----------------------------------------------------------------------------
	// Reconnect replaces the stream connection using the current token.
	Reconnect(ctx context.Context) error

	// -----------------------------------------------------------------------------
	RefreshModels(ctx context.Context)

	// -----------------------------------------------------------------------------
	SelectModel(id string) error

	// -----------------------------------------------------------------------------
	// Snapshot returns a copy of the dashboard state.
	Snapshot() models.MDashboardState
}

// -----------------------------------------------------------------------------
// IEventSource publishes state change events.
// -----------------------------------------------------------------------------

type IEventSource interface {
	// Subscribe returns a function that removes the listener.
	Subscribe(listener func(models.MEvent)) func()
}
