package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	API      APIConfig      `mapstructure:"api"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend. "memory" keeps everything in process
	// and is intended for local development and tests.
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres memory"`
	URL          string `mapstructure:"url"            validate:"required_if=Driver postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// EncryptionKey signs client tokens. Rotating it invalidates every stored token.
	EncryptionKey string `mapstructure:"encryption_key" validate:"required,min=32"`
	// MasterKeys is the whitelist for administrative routes. Entries may be
	// plaintext or bcrypt hashes (see cmd/hash-generator).
	MasterKeys      []string `mapstructure:"master_keys"       validate:"required,min=1,dive,required"`
	MasterKeyHeader string   `mapstructure:"master_key_header" validate:"required"`
}

// APIConfig describes the public surface of the service.
type APIConfig struct {
	Version     string `mapstructure:"version"      validate:"required"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}
