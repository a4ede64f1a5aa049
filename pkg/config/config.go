package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for asksql-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Application database (history store)
	Database DatabaseConfig `yaml:"database"`

	// Target datasource the generated SQL runs against
	Datasource DatasourceConfig `yaml:"datasource"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// AliasesStr maps user vocabulary to database vocabulary before the
	// question reaches the LLM. Format: "club=team,rating=ovr"
	AliasesStr string `yaml:"aliases" env:"QUESTION_ALIASES" env-default:""`

	// Aliases is the parsed map from AliasesStr (not from config file).
	Aliases map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL configuration for the history store.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"asksql"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"asksql_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`

	// Pool tuning.
	MaxConnections         int32 `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MaxConnLifetimeMinutes int   `yaml:"max_conn_lifetime_minutes" env:"PGMAX_CONN_LIFETIME_MINUTES" env-default:"60"`
	MaxConnIdleMinutes     int   `yaml:"max_conn_idle_minutes" env:"PGMAX_CONN_IDLE_MINUTES" env-default:"30"`
}

// DatasourceConfig holds the connection and execution policy for the
// database that answers user questions.
type DatasourceConfig struct {
	// URL is the full connection string. Secret - not in YAML, it may
	// embed credentials.
	URL string `yaml:"-" env:"DATASOURCE_URL"`

	// QueryTimeoutSeconds bounds a single query execution.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"QUERY_TIMEOUT_SECONDS" env-default:"30"`

	// MaxRows caps the number of rows returned per query. Results beyond
	// the cap are truncated with an indicator rather than failing.
	MaxRows int `yaml:"max_rows" env:"QUERY_MAX_ROWS" env-default:"1000"`
}

// LLMConfig holds the external LLM provider settings.
type LLMConfig struct {
	// Provider selects the client implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`

	// Endpoint is the base URL for OpenAI-compatible endpoints. Ignored by
	// the anthropic provider.
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`

	Model  string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	// TimeoutSeconds bounds a single generation call, independent of the
	// datasource query timeout.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`

	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development; requests then identify
	// themselves with the X-User-ID header.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWTSecret is the HS256 signing secret shared with the identity
	// provider. Required when verification is enabled.
	JWTSecret string `yaml:"-" env:"AUTH_JWT_SECRET"` // Secret - not in YAML
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml is absent the environment alone is used.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Aliases = parseAliases(cfg.AliasesStr)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required when auth verification is enabled")
	}
	if c.LLM.Provider != "openai" && c.LLM.Provider != "anthropic" {
		return fmt.Errorf("unsupported LLM provider %q", c.LLM.Provider)
	}
	if c.Datasource.MaxRows <= 0 {
		return fmt.Errorf("query_max_rows must be positive")
	}
	return nil
}

// QueryTimeout returns the datasource execution timeout as a duration.
func (c *DatasourceConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// Timeout returns the LLM call timeout as a duration.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConnLifetime returns the maximum lifetime of a pooled connection.
func (c *DatabaseConfig) ConnLifetime() time.Duration {
	return time.Duration(c.MaxConnLifetimeMinutes) * time.Minute
}

// ConnIdleTime returns how long a pooled connection may sit idle.
func (c *DatabaseConfig) ConnIdleTime() time.Duration {
	return time.Duration(c.MaxConnIdleMinutes) * time.Minute
}

// ConnectionString returns a PostgreSQL connection string for the history store.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// parseAliases parses the alias string into a map.
// Format: "alias1=actual1,alias2=actual2"
func parseAliases(value string) map[string]string {
	aliases := make(map[string]string)
	if value == "" {
		return aliases
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			alias := strings.TrimSpace(parts[0])
			actual := strings.TrimSpace(parts[1])
			if alias != "" && actual != "" {
				aliases[strings.ToLower(alias)] = actual
			}
		}
	}
	return aliases
}
