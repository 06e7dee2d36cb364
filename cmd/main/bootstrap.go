package main

import (
	"context"

	"synapse-console/src/logger"
	"synapse-console/src/models"
)

// autoLogin signs in with credentials from the environment when no session
// was restored. Used for demos and unattended runs.
func autoLogin(ctx context.Context, config *models.MConfig, c *core, appLogger *logger.Logger) {
	creds := config.Credentials
	if creds.Username == "" || creds.Password == "" {
		return
	}
	if c.store.IsAuthenticated() {
		appLogger.Info("Session restored, skipping automatic login")
		return
	}

	if err := c.controller.Login(ctx, creds.Username, creds.Password); err != nil {
		appLogger.Warning("Automatic login for %s failed: %v", creds.Username, err)
	}
}
