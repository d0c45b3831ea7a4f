package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            uint16        `env:"PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AdminIDs are the user ids allowed to resolve catalog items.
	AdminIDs []int64 `env:"ADMIN_IDS"`

	Postgres PostgresConfig `envPrefix:"PG_"`
	Provider ProviderConfig `envPrefix:"PROVIDER_"`
}

type PostgresConfig struct {
	DSN             string        `env:"DSN,required"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

type ProviderConfig struct {
	BaseURL     string `env:"BASE_URL"`
	APIKey      string `env:"API_KEY"`
	CallbackURL string `env:"CALLBACK_URL"`
}

// Load reads configuration from the environment, with an optional .env file
// applied first (a missing file is not an error).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AdminSet returns the configured admin ids as a lookup set.
func (c *Config) AdminSet() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.AdminIDs))
	for _, id := range c.AdminIDs {
		set[id] = struct{}{}
	}

	return set
}
