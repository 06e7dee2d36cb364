package storage

import (
	"fmt"

	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
)

// NewTokenStore picks the backend named by storage.db_type and initializes it.
func NewTokenStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ITokenStore, error) {
	var store interfaces.ITokenStore

	switch cfg.Storage.DBType {
	case "postgres":
		pg, err := NewPostgresTokenStore(cfg, log)
		if err != nil {
			return nil, err
		}
		store = pg
	case "sqlite", "":
		store = NewSQLiteTokenStore(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}
	return store, nil
}
