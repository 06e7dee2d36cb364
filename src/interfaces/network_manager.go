package interfaces

import (
	"context"
	"net/url"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP requests.
// Transport failures come back as errors; HTTP statuses are left to the caller.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request with the given headers.
	Get(ctx context.Context, url string, headers map[string]string) (int, []byte, error)

	// -----------------------------------------------------------------------------

	// PostForm performs a form-encoded POST request.
	PostForm(ctx context.Context, url string, form url.Values) (int, []byte, error)
}
