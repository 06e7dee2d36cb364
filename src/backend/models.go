package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"synapse-console/src/helpers"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
)

// ModelClient lists models from the REST gateway with a bearer token.
type ModelClient struct {
	modelsURL string
	network   interfaces.INetworkManager
	logger    *logger.Logger
}

func NewModelClient(cfg models.MAPIConfig, network interfaces.INetworkManager, log *logger.Logger) *ModelClient {
	return &ModelClient{
		modelsURL: cfg.ModelsURL,
		network:   network,
		logger:    log.Named("ModelClient"),
	}
}

// FetchModels returns AuthorizationExpiredError on 401 and a NetworkError for any
// other non-2xx status.
func (c *ModelClient) FetchModels(ctx context.Context, token string) ([]models.MModel, error) {
	if token == "" {
		return nil, &helpers.SynapseError{Message: "No authentication token found."}
	}

	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + token,
	}
	status, body, err := c.network.Get(ctx, c.modelsURL, headers)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		return nil, helpers.NewAuthorizationExpiredError()
	}
	if status < 200 || status > 299 {
		c.logger.Debug("model listing returned status %d", status)
		return nil, helpers.NewNetworkError("Failed to fetch models", nil)
	}

	list := []models.MModel{}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, helpers.NewNetworkError("Failed to fetch models", err)
	}
	return list, nil
}
