package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"synapse-console/src/helpers"
	"synapse-console/src/logger"
	"synapse-console/src/models"

	_ "modernc.org/sqlite"
)

// TokenKey is the fixed name of the slot holding the session token.
const TokenKey = "synapse_token"

// -----------------------------------------------------------------------------

type SQLiteTokenStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteTokenStore(cfg *models.MConfig, log *logger.Logger) *SQLiteTokenStore {
	return &SQLiteTokenStore{
		Config: cfg,
		Logger: log.Named("SQLiteTokenStore"),
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteTokenStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("failed to open sqlite", err)
	}

	if err := db.Ping(); err != nil {
		return helpers.NewDatabaseError("failed to ping sqlite", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return helpers.NewDatabaseError("failed to create kv_store", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTokenStore) GetToken() (string, error) {
	var token string
	err := d.DB.QueryRow("SELECT value FROM kv_store WHERE key = ?", TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", helpers.NewDatabaseError("failed to read token", err)
	}
	return token, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTokenStore) SetToken(token string) error {
	if token == "" {
		return d.ClearToken()
	}

	_, err := d.DB.Exec(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, TokenKey, token)
	if err != nil {
		return helpers.NewDatabaseError("failed to write token", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTokenStore) ClearToken() error {
	if _, err := d.DB.Exec("DELETE FROM kv_store WHERE key = ?", TokenKey); err != nil {
		return helpers.NewDatabaseError(fmt.Sprintf("failed to clear %s", TokenKey), err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTokenStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
