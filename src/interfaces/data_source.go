package interfaces

import (
	"context"

	"synapse-console/src/models"
)

// -----------------------------------------------------------------------------
// IIdentityProvider exchanges credentials for an access token.
// -----------------------------------------------------------------------------

type IIdentityProvider interface {

	// Login returns the access token or an AuthenticationError carrying the
	// provider's error description.
	Login(ctx context.Context, username, password string) (string, error)
}

// -----------------------------------------------------------------------------
// IModelSource lists the models visible to a token.
// -----------------------------------------------------------------------------

type IModelSource interface {

	// FetchModels returns an AuthorizationExpiredError when the token is rejected.
	FetchModels(ctx context.Context, token string) ([]models.MModel, error)
}
