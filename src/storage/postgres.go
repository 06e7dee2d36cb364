package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresTokenStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresTokenStore keeps its table in a schema named after the executable,
// so several consoles can share one database.
func NewPostgresTokenStore(cfg *models.MConfig, log *logger.Logger) (*PostgresTokenStore, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresTokenStore{
		Config: cfg,
		Schema: name,
		Logger: log.Named("PostgresTokenStore"),
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewDatabaseError("failed to open postgres", err)
	}

	if err := db.Ping(); err != nil {
		return helpers.NewDatabaseError("failed to ping postgres", err)
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("failed to create schema %s", d.Schema), err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, d.table())
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create kv_store", err)
	}

	d.Logger.Info("Token store ready in schema %s", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) table() string {
	return fmt.Sprintf(`"%s".kv_store`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) GetToken() (string, error) {
	var token string
	err := d.DB.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE key = $1", d.table()), TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", helpers.NewDatabaseError("failed to read token", err)
	}
	return token, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) SetToken(token string) error {
	if token == "" {
		return d.ClearToken()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, d.table())
	if _, err := d.DB.Exec(query, TokenKey, token); err != nil {
		return helpers.NewDatabaseError("failed to write token", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) ClearToken() error {
	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE key = $1", d.table()), TokenKey); err != nil {
		return helpers.NewDatabaseError("failed to clear token", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTokenStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
