package jwtmw

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// Config controls bearer token signing.
type Config struct {
	Secret     string        `env:"JWT_SECRET"`
	Issuer     string        `env:"JWT_ISSUER"     envDefault:"opinion-auth"`
	Expiration time.Duration `env:"JWT_EXPIRATION" envDefault:"8h"`
}

// LoadConfigFromEnv loads bearer token settings from environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse jwt env: %w", err)
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = 8 * time.Hour
	}
	return cfg, nil
}
