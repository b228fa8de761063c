// Package mail delivers transactional mail for the auth lifecycle.
package mail

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds mail provider settings. An empty APIURL selects the LogMailer.
type Config struct {
	APIURL      string        `env:"MAIL_API_URL"`
	APIKey      string        `env:"MAIL_API_KEY"`
	From        string        `env:"MAIL_FROM"          envDefault:"no-reply@local.test"`
	LinkBaseURL string        `env:"MAIL_LINK_BASE_URL" envDefault:"http://localhost:3000"`
	Timeout     time.Duration `env:"MAIL_TIMEOUT"       envDefault:"10s"`
	// RateLimit is the number of sends allowed per minute; 0 disables throttling.
	RateLimit int `env:"MAIL_RATE_LIMIT" envDefault:"60"`
}

// LoadConfigFromEnv loads mail configuration from environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse mail env: %w", err)
	}
	return cfg, nil
}
