// Package media stores uploaded profile pictures.
package media

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds media storage settings.
type Config struct {
	// Dir is where stored files live. Served under BaseURL.
	Dir     string `env:"MEDIA_DIR"      envDefault:"./media"`
	BaseURL string `env:"MEDIA_BASE_URL" envDefault:"/media"`
	// Folder groups files below Dir (profile pictures by default).
	Folder string `env:"MEDIA_FOLDER" envDefault:"profiles"`
	// UploadDir receives multipart uploads before they are stored.
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
}

// LoadConfigFromEnv loads media configuration from environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse media env: %w", err)
	}
	return cfg, nil
}
