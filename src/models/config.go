package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	GrpcHost string          `yaml:"grpc_host"`
	GrpcPort int             `yaml:"grpc_port"`
	Timezone string          `yaml:"timezone"`
	Identity MIdentityConfig `yaml:"identity"`
	API      MAPIConfig      `yaml:"api"`
	Stream   MStreamConfig   `yaml:"stream"`
	Network  MNetworkConfig  `yaml:"network"`
	Storage  MStorageConfig  `yaml:"storage"`
	Console  MConsoleConfig  `yaml:"console"`

	// Loaded from the environment, never written back to YAML
	Credentials MCredentials `yaml:"-"`
}

type MIdentityConfig struct {
	TokenURL string `yaml:"token_url"`
	ClientID string `yaml:"client_id"`
}

type MAPIConfig struct {
	ModelsURL string `yaml:"models_url"`
}

type MStreamConfig struct {
	URL                     string `yaml:"url"`
	HandshakeTimeoutSeconds int    `yaml:"handshake_timeout"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MConsoleConfig struct {
	// 0 keeps every entry for the lifetime of the process
	MaxEntries int `yaml:"max_entries"`
}

type MCredentials struct {
	Username string
	Password string
}
