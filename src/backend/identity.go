package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"synapse-console/src/helpers"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
)

const defaultAuthFailure = "Authentication failed"

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ErrorDescription string `json:"error_description"`
}

// IdentityClient performs the OpenID Connect password grant.
type IdentityClient struct {
	tokenURL string
	clientID string
	network  interfaces.INetworkManager
	logger   *logger.Logger
}

func NewIdentityClient(cfg models.MIdentityConfig, network interfaces.INetworkManager, log *logger.Logger) *IdentityClient {
	return &IdentityClient{
		tokenURL: cfg.TokenURL,
		clientID: cfg.ClientID,
		network:  network,
		logger:   log.Named("IdentityClient"),
	}
}

// Login exchanges credentials for an access token. A rejected exchange yields an
// AuthenticationError whose message is the provider's error_description verbatim.
func (c *IdentityClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {c.clientID},
		"username":   {username},
		"password":   {password},
	}

	status, body, err := c.network.PostForm(ctx, c.tokenURL, form)
	if err != nil {
		return "", err
	}

	var resp tokenResponse
	decodeErr := json.Unmarshal(body, &resp)

	if status < 200 || status > 299 {
		message := defaultAuthFailure
		if decodeErr == nil && resp.ErrorDescription != "" {
			message = resp.ErrorDescription
		}
		c.logger.Debug("token exchange for %s rejected with status %d", username, status)
		return "", helpers.NewAuthenticationError(message)
	}

	if decodeErr != nil {
		return "", helpers.NewNetworkError("invalid token response", decodeErr)
	}
	if resp.AccessToken == "" {
		return "", helpers.NewAuthenticationError(defaultAuthFailure)
	}
	return resp.AccessToken, nil
}
