package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	DataDir           string `env:"DATA_DIR" envDefault:"data"`
	StaticDir         string `env:"STATIC_DIR" envDefault:"static"`
	SessionTTLSeconds int    `env:"SESSION_TTL_SECONDS" envDefault:"86400"`
	BcryptCost        int    `env:"BCRYPT_COST" envDefault:"10"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}

	if isProduction {
		if c.BcryptCost < bcrypt.DefaultCost {
			log.Warn().Int("cost", c.BcryptCost).Msg("BCRYPT_COST below default in production")
		}
		if c.SessionTTLSeconds > 7*24*3600 {
			log.Warn().Int("seconds", c.SessionTTLSeconds).Msg("SESSION_TTL_SECONDS above one week in production")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
