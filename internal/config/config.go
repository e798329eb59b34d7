package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Provider ProviderConfig
	Client   ClientConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// ProviderConfig holds the imagery-provider service account credentials.
// The private key arrives newline-escaped from the environment and is
// unescaped here.
type ProviderConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
}

// Configured reports whether all three credential parts are present.
// The server starts without them, but analysis requests fail until they
// are set.
func (p ProviderConfig) Configured() bool {
	return p.ProjectID != "" && p.ClientEmail != "" && p.PrivateKey != ""
}

// ClientConfig holds settings for the analysis API client (cmd/analyze).
type ClientConfig struct {
	BaseURL string
}

// DatabaseConfig holds the optional PostgreSQL connection configuration
// for analysis history. Disabled by default; the analysis pipeline is
// fully functional without it.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// Load reads configuration from environment variables. A local .env file
// is honored when present (development convenience); real environment
// variables win over it.
func Load() (*Config, error) {
	// Ignore a missing .env; it only exists in development checkouts.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "croplens")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Provider: ProviderConfig{
			ProjectID:   v.GetString("EE_PROJECT_ID"),
			ClientEmail: v.GetString("EE_CLIENT_EMAIL"),
			PrivateKey:  unescapeKey(v.GetString("EE_PRIVATE_KEY")),
		},
		Client: ClientConfig{
			BaseURL: v.GetString("API_BASE_URL"),
		},
		Database: DatabaseConfig{
			Enabled:  v.GetBool("DB_ENABLED"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
// Provider credentials are deliberately not required: the server runs and
// reports itself uninitialized on /health without them.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Partial credentials are a misconfiguration, not a disabled provider.
	p := c.Provider
	if !p.Configured() && (p.ProjectID != "" || p.ClientEmail != "" || p.PrivateKey != "") {
		return fmt.Errorf("EE_PROJECT_ID, EE_CLIENT_EMAIL, and EE_PRIVATE_KEY must be set together")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when DB_ENABLED is true")
		}
		if c.Database.Port == "" {
			return fmt.Errorf("DB_PORT is required when DB_ENABLED is true")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DB_ENABLED is true")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required when DB_ENABLED is true")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when DB_ENABLED is true")
		}
		if c.Database.PoolMin < 0 {
			return fmt.Errorf("DB_POOL_MIN must be non-negative")
		}
		if c.Database.PoolMax < 1 {
			return fmt.Errorf("DB_POOL_MAX must be at least 1")
		}
		if c.Database.PoolMin > c.Database.PoolMax {
			return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
		}
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// unescapeKey converts the newline-escaped private key from the
// environment back into real PEM line breaks.
func unescapeKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
