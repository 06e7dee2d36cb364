package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"
)

const maxResponseBytes = 4 << 20

type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
		Logger: log.Named("NetworkManager"),
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request. There is no retry: failures surface to the caller.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return nm.do(req)
}

// -----------------------------------------------------------------------------

// PostForm performs an application/x-www-form-urlencoded POST request.
func (nm *AsyncNetworkManager) PostForm(ctx context.Context, urlStr string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return nm.do(req)
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")
	if nm.Config.Network.UserAgent != "" {
		req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("%s %s failed: %v", req.Method, req.URL.Redacted(), err)
		return 0, nil, helpers.NewNetworkError(fmt.Sprintf("%s %s failed", req.Method, req.URL.Host), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, helpers.NewNetworkError("failed to read response body", err)
	}

	nm.Logger.Debug("%s %s -> %d (%d bytes)", req.Method, req.URL.Redacted(), resp.StatusCode, len(body))
	return resp.StatusCode, body, nil
}
