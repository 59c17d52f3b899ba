// config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment (and .env).
type Config struct {
	Port           int      `env:"PORT" envDefault:"8001"`
	DatabaseURL    string   `env:"DATABASE_URL" envDefault:"sqlite://eco_cycle.db"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ServiceToken   string   `env:"GAME_SERVICE_TOKEN"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"logs/eco_cycle.log"`

	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`
	Catalog                CatalogSource
}

// CatalogSource points at an optional catalog document in an R2 bucket.
type CatalogSource struct {
	Bucket          string `env:"CATALOG_BUCKET"`
	ObjectKey       string `env:"CATALOG_OBJECT_KEY" envDefault:"catalog.json"`
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
}

// Enabled reports whether a remote catalog should be fetched.
func (c CatalogSource) Enabled() bool {
	return c.Bucket != ""
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then the environment. The returned
// bool reports whether a .env file was found.
func Load(files ...string) (Config, bool, error) {
	foundDotEnv := godotenv.Load(files...) == nil

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, foundDotEnv, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, foundDotEnv, err
	}
	return cfg, foundDotEnv, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.CatalogRefreshInterval <= 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must be positive")
	}
	if c.Catalog.Enabled() && c.Catalog.AccountID == "" {
		return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID is required when CATALOG_BUCKET is set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
