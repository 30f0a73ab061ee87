package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/giannis84/character-favourites/internal/auth"
	"github.com/giannis84/character-favourites/internal/database"
	"github.com/giannis84/character-favourites/internal/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath  = "config.yaml"
	defaultDotEnvPath  = ".env"
	defaultUsersFile   = "users.json"
	defaultStoragePath = "data"
)

// Config holds the application configuration.
type Config struct {
	APIPort    string `yaml:"api_port"    env:"API_PORT"`
	HealthPort string `yaml:"health_port" env:"HEALTH_PORT"`

	// HTTP server timeouts (optional, defaults apply in server.go)
	ReadTimeout  time.Duration `yaml:"read_timeout"  env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  env:"IDLE_TIMEOUT"`

	LogLevel  string `yaml:"log_level"  env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"` // json or text

	// JWT signing secret (env var only). Normally in production it should be
	// fetched from a secrets provider like Vault, and not set via config file.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"`

	// AllowUnsignedTokens permits unsigned JWT tokens (alg=none) when no secret is set.
	// This should ONLY be enabled for local development and testing.
	AllowUnsignedTokens bool          `yaml:"-"         env:"ALLOW_UNSIGNED_TOKENS"`
	TokenTTL            time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`

	// UsersFile is the JSON user list logins are checked against.
	UsersFile string `yaml:"users_file" env:"USERS_FILE"`

	// Favourites storage: memory, file, sqlite or postgres.
	StorageBackend string `yaml:"storage_backend" env:"STORAGE_BACKEND"`
	StoragePath    string `yaml:"storage_path"    env:"STORAGE_PATH"`
	StorageKey     string `yaml:"storage_key"     env:"STORAGE_KEY"`

	// Database configuration (env vars only; secrets must not live in config.yaml)
	DBHost     string `yaml:"-" env:"POSTGRES_HOST"`
	DBPort     string `yaml:"-" env:"POSTGRES_PORT"`
	DBUser     string `yaml:"-" env:"POSTGRES_USER"`
	DBPassword string `yaml:"-" env:"POSTGRES_PASSWORD"`
	DBName     string `yaml:"-" env:"POSTGRES_DB"`

	CatalogBaseURL string        `yaml:"catalog_base_url" env:"CATALOG_BASE_URL"`
	CatalogTimeout time.Duration `yaml:"catalog_timeout"  env:"CATALOG_TIMEOUT"`

	// CORSAllowedOrigins lists the origins the browser client is served from.
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Rate limiting configuration
	RateLimitRequests int           `yaml:"rate_limit_requests" env:"RATE_LIMIT_REQUESTS"` // Max requests per window (0 = disabled)
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"   env:"RATE_LIMIT_WINDOW"`   // Time window for rate limiting
}

// Load reads configuration with the following precedence (highest wins):
//  1. Environment variables (including a .env file, which never overrides the real environment)
//  2. YAML config file (path from CONFIG_PATH env var, or "config.yaml")
//  3. Built-in defaults
//
// Database settings and the JWT secret are loaded exclusively from environment variables.
func Load() (*Config, error) {
	dotenv := os.Getenv("DOTENV_PATH")
	if dotenv == "" {
		dotenv = defaultDotEnvPath
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", dotenv, err)
	}

	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UsersFile == "" {
		c.UsersFile = defaultUsersFile
	}
	if c.StorageBackend == "" {
		c.StorageBackend = database.BackendFile
	}
	c.StorageBackend = strings.ToLower(c.StorageBackend)
	if c.StoragePath == "" {
		c.StoragePath = defaultStoragePath
	}
	if c.LogFormat == "" {
		c.LogFormat = logging.FormatJSON
	}

	// Apply rate limiting defaults if partially configured
	if c.RateLimitRequests > 0 && c.RateLimitWindow == 0 {
		c.RateLimitWindow = time.Minute // Default window: 1 minute
	}
}

func (c *Config) validate() error {
	if c.APIPort == "" {
		return fmt.Errorf("api_port is required (set via config file or API_PORT env var)")
	}
	if c.HealthPort == "" {
		return fmt.Errorf("health_port is required (set via config file or HEALTH_PORT env var)")
	}

	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", logging.FormatJSON, logging.FormatText, c.LogFormat)
	}

	if c.JWTSecret == "" && !c.AllowUnsignedTokens {
		return fmt.Errorf("JWT_SECRET env var is required unless ALLOW_UNSIGNED_TOKENS=true")
	}

	switch c.StorageBackend {
	case database.BackendMemory, database.BackendFile, database.BackendSQLite:
	case database.BackendPostgres:
		required := []struct{ name, value string }{
			{"POSTGRES_HOST", c.DBHost},
			{"POSTGRES_PORT", c.DBPort},
			{"POSTGRES_USER", c.DBUser},
			{"POSTGRES_PASSWORD", c.DBPassword},
			{"POSTGRES_DB", c.DBName},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("%s env var is required for the postgres storage backend", r.name)
			}
		}
	default:
		return fmt.Errorf("unknown storage_backend %q (allowed: memory, file, sqlite, postgres)", c.StorageBackend)
	}
	return nil
}

// PostgresConnString returns a PostgreSQL connection string.
func (c *Config) PostgresConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// APIAddr returns the listen address for the API server.
func (c *Config) APIAddr() string {
	return ":" + c.APIPort
}

// HealthAddr returns the listen address for the health check server.
func (c *Config) HealthAddr() string {
	return ":" + c.HealthPort
}

// AuthConfig returns the JWT authentication configuration.
func (c *Config) AuthConfig() auth.AuthConfig {
	return auth.AuthConfig{
		Secret:              c.JWTSecret,
		AllowUnsignedTokens: c.AllowUnsignedTokens,
		TokenTTL:            c.TokenTTL,
	}
}

// StorageConfig returns the favourites storage backend configuration.
func (c *Config) StorageConfig() database.StorageConfig {
	sc := database.StorageConfig{
		Backend: c.StorageBackend,
		Path:    c.StoragePath,
	}
	if c.StorageBackend == database.BackendPostgres {
		sc.PostgresDSN = c.PostgresConnString()
	}
	return sc
}

// LoggingOptions returns the logger configuration.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat}
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int           // Max requests per window (0 = disabled)
	Window   time.Duration // Time window for rate limiting
}

// RateLimitConfig returns the rate limiting configuration.
func (c *Config) RateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests: c.RateLimitRequests,
		Window:   c.RateLimitWindow,
	}
}
