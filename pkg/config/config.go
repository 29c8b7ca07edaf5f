// Package config provides unified configuration for the moodlog server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. .env file (variables already set in the environment win)
//  4. Environment variable overrides (MOODLOG_ prefix)
//  5. Legacy variable names (OPENROUTER_API_KEY)
//  6. File reference resolution (_file suffix fields)
//  7. Validation
package config

import "time"

// Config holds all configuration for the moodlog server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Provider      ProviderConfig      `yaml:"provider"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `yaml:"port"`                // default: 8000
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"` // default: 10s
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`    // default: 30s
	MaxBodySize       int64         `yaml:"max_body_size"`       // default: 1 MiB
}

// ProviderConfig holds the LLM provider connection settings.
type ProviderConfig struct {
	BaseURL      string            `yaml:"base_url"`     // default: https://openrouter.ai/api/v1
	APIKey       string            `yaml:"api_key"`      // optional; LLM endpoints answer 500 without it
	APIKeyFile   string            `yaml:"api_key_file"` // _file variant for api_key
	Timeout      time.Duration     `yaml:"timeout"`      // default: 10s
	Referer      string            `yaml:"referer"`      // HTTP-Referer attribution header
	Title        string            `yaml:"title"`        // X-Title attribution header
	ModelMapping map[string]string `yaml:"model_mapping"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"`     // "memory" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size"` // for memory store, 0 = unbounded
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type       string         `yaml:"type"`        // "none", "apikey" or "jwt", default: "none"
	APIKeys    []APIKeyConfig `yaml:"api_keys"`    // entries for type=apikey
	JWT        JWTConfig      `yaml:"jwt"`         // token settings for /login/ and type=jwt
	BcryptCost int            `yaml:"bcrypt_cost"` // default: bcrypt.DefaultCost
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Name    string `yaml:"name" json:"name"`
	Key     string `yaml:"key" json:"key"`
	KeyFile string `yaml:"key_file" json:"key_file"` // _file variant for key
}

// JWTConfig holds login token settings.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	SecretFile string        `yaml:"secret_file"` // _file variant for secret
	Issuer     string        `yaml:"issuer"`      // default: "moodlog"
	TTL        time.Duration `yaml:"ttl"`         // default: 24h
}

// MCPConfig holds the MCP tool endpoint settings.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"` // default: false
	Path    string `yaml:"path"`    // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log level and debug category settings.
// MOODLOG_LOG_LEVEL and MOODLOG_DEBUG take precedence at startup.
type LoggingConfig struct {
	Level string `yaml:"level"` // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Debug string `yaml:"debug"` // comma-separated categories, e.g. "provider,assist"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:              8000,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			MaxBodySize:       1 << 20,
		},
		Provider: ProviderConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       10,
				MigrateOnStart: true,
			},
		},
		Auth: AuthConfig{
			Type: "none",
			JWT: JWTConfig{
				Issuer: "moodlog",
				TTL:    24 * time.Hour,
			},
		},
		MCP: MCPConfig{
			Path: "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
