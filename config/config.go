/*
Package config loads server configuration from the environment.

PURPOSE:
  One place for every tunable. Values come from environment variables,
  optionally seeded from a .env file in development. Defaults are chosen
  so `go run ./cmd/server` works with no configuration at all.

VARIABLES:
  PORT            HTTP server port                  (default: 8080)
  DB_PATH         SQLite database path              (default: lodger.db)
                  Use ":memory:" for in-memory
  SWEEP_INTERVAL  Deadline sweep check interval     (default: 1h)
  SWEEP_ENABLED   Whether the sweep scheduler runs  (default: true)
  CORS_ORIGINS    Allowed CORS origins, comma-sep   (default: localhost dev ports)
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	Port          int           `env:"PORT" envDefault:"8080"`
	DBPath        string        `env:"DB_PATH" envDefault:"lodger.db"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	SweepEnabled  bool          `env:"SWEEP_ENABLED" envDefault:"true"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
