package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"synapse-console/src/helpers"
	"synapse-console/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment keys for secrets that never live in the YAML file
const (
	EnvUsername = "SYNAPSE_USERNAME"
	EnvPassword = "SYNAPSE_PASSWORD"
	EnvDBDSN    = "SYNAPSE_DB_DSN"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Overlay secrets from the environment (.env is optional)
	_ = godotenv.Load()
	config.applyEnv()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Stream.HandshakeTimeoutSeconds == 0 {
		c.Stream.HandshakeTimeoutSeconds = 10
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() {
	c.Credentials.Username = strings.TrimSpace(os.Getenv(EnvUsername))
	c.Credentials.Password = os.Getenv(EnvPassword)
	if dsn := strings.TrimSpace(os.Getenv(EnvDBDSN)); dsn != "" {
		c.Storage.DBConnectionString = dsn
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return invalid("application name cannot be empty")
	}

	// Local API
	if c.Host == "" {
		return invalid("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return invalid("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return invalid("invalid grpc port number: %d", c.GrpcPort)
	}
	if _, err := c.Location(); err != nil {
		return helpers.NewConfigurationError(fmt.Sprintf("invalid timezone '%s'", c.Timezone), err)
	}

	// Collaborators
	if err := validateURL("identity.token_url", c.Identity.TokenURL, "http", "https"); err != nil {
		return err
	}
	if c.Identity.ClientID == "" {
		return invalid("identity.client_id cannot be empty")
	}
	if err := validateURL("api.models_url", c.API.ModelsURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("stream.url", c.Stream.URL, "ws", "wss"); err != nil {
		return err
	}

	if c.Network.RequestTimeout <= 0 {
		return invalid("request timeout must be greater than 0")
	}
	if c.Stream.HandshakeTimeoutSeconds <= 0 {
		return invalid("stream handshake timeout must be greater than 0")
	}

	// Storage
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return invalid("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return invalid("database connection string cannot be empty for postgres")
		}
	default:
		return invalid("unsupported database type: %s", c.Storage.DBType)
	}

	if c.Console.MaxEntries < 0 {
		return invalid("console max entries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Location resolves the timezone used for chart labels
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return invalid("%s cannot be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return helpers.NewConfigurationError(field+" is not a valid URL", err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return invalid("%s must use one of %v, got '%s'", field, schemes, u.Scheme)
}

// -----------------------------------------------------------------------------

func invalid(format string, args ...interface{}) error {
	return helpers.NewConfigurationError(fmt.Sprintf(format, args...), nil)
}
