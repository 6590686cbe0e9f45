package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Environment string // "development" or "production"
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	SignGateway SignGatewayConfig
	PollGateway PollGatewayConfig
	Seed        SeedConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token issuance configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// SignGatewayConfig holds credentials for the signature-based payment
// provider (gateway-a). The secret is shared with the provider and used to
// verify callback signatures.
type SignGatewayConfig struct {
	Enabled bool
	BaseURL string
	KeyID   string
	Secret  string
}

// PollGatewayConfig holds credentials for the poll-based payment provider
// (gateway-b).
type PollGatewayConfig struct {
	Enabled      bool
	BaseURL      string
	ClientID     string
	ClientSecret string
	ReturnURL    string
}

// SeedConfig holds catalogue seed-file configuration. When S3 is enabled,
// seed files are fetched from the bucket with local file fallback.
type SeedConfig struct {
	File      string // fixture path; empty disables seeding
	S3Enabled bool
	Bucket    string
	Region    string
	Prefix    string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 720)) * time.Hour,
		},
		SignGateway: SignGatewayConfig{
			Enabled: getEnvAsBool("SIGN_GATEWAY_ENABLED", true),
			BaseURL: getEnv("SIGN_GATEWAY_URL", "https://api.sign-gateway.example.com/v1"),
			KeyID:   getEnv("SIGN_GATEWAY_KEY_ID", ""),
			Secret:  getEnv("SIGN_GATEWAY_SECRET", ""),
		},
		PollGateway: PollGatewayConfig{
			Enabled:      getEnvAsBool("POLL_GATEWAY_ENABLED", true),
			BaseURL:      getEnv("POLL_GATEWAY_URL", "https://sandbox.poll-gateway.example.com/pg"),
			ClientID:     getEnv("POLL_GATEWAY_CLIENT_ID", ""),
			ClientSecret: getEnv("POLL_GATEWAY_CLIENT_SECRET", ""),
			ReturnURL:    getEnv("POLL_GATEWAY_RETURN_URL", "http://localhost:3000/order-confirmation/{order_id}"),
		},
		Seed: SeedConfig{
			File:      getEnv("SEED_FILE", ""),
			S3Enabled: getEnvAsBool("SEED_S3_ENABLED", false),
			Bucket:    getEnv("SEED_S3_BUCKET", ""),
			Region:    getEnv("SEED_S3_REGION", "us-east-1"),
			Prefix:    getEnv("SEED_S3_PREFIX", "seeds/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Misconfigured payment providers are
// a startup error, not a per-request one.
func (c *Config) Validate() error {
	if c.Environment != "development" && c.Environment != "production" {
		return fmt.Errorf("invalid environment: %s (must be development or production)", c.Environment)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.SignGateway.Enabled {
		if c.SignGateway.KeyID == "" || c.SignGateway.Secret == "" {
			return fmt.Errorf("sign gateway key ID and secret are required when the gateway is enabled")
		}
	}

	if c.PollGateway.Enabled {
		if c.PollGateway.ClientID == "" || c.PollGateway.ClientSecret == "" {
			return fmt.Errorf("poll gateway client ID and secret are required when the gateway is enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Seed.S3Enabled {
		if c.Seed.Bucket == "" {
			return fmt.Errorf("seed S3 bucket is required when S3 is enabled")
		}
		if c.Seed.Region == "" {
			return fmt.Errorf("seed S3 region is required when S3 is enabled")
		}
	}

	return nil
}

// IsProduction reports whether the service runs with production settings.
// The development-only payment bypass is not registered in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
