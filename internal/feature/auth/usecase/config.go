package usecase

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"opinion_backend/internal/feature/auth/domain/entity"
)

// Config holds lifecycle settings.
type Config struct {
	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTokenTTL        time.Duration `env:"RESET_TOKEN_TTL"        envDefault:"1h"`
	StoreTimeout         time.Duration `env:"STORE_TIMEOUT"          envDefault:"5s"`
	MailTimeout          time.Duration `env:"MAIL_TIMEOUT"           envDefault:"10s"`
	BcryptCost           int           `env:"BCRYPT_COST"            envDefault:"10"`

	AllowedRoles []string `env:"ALLOWED_ROLES" envDefault:"ADMIN,USER" envSeparator:","`
	AdminRole    string   `env:"ADMIN_ROLE"    envDefault:"ADMIN"`
	DefaultRole  string   `env:"DEFAULT_ROLE"  envDefault:"USER"`

	// PhoneRegion is the default region for numbers without a country code.
	PhoneRegion   string `env:"PHONE_REGION"   envDefault:"GT"`
	DefaultAvatar string `env:"DEFAULT_AVATAR" envDefault:"default-avatar.png"`
}

// AdminConfig describes the administrator ensured at startup.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME"     envDefault:"Admin"`
	Surname  string `env:"ADMIN_SURNAME"  envDefault:"User"`
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Email    string `env:"ADMIN_EMAIL"    envDefault:"admin@local.test"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"Admin1234"`
	Phone    string `env:"ADMIN_PHONE"    envDefault:"00000000"`
}

// LoadConfigFromEnv loads lifecycle configuration from environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse auth env: %w", err)
	}
	if _, err := cfg.Roles(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadAdminConfigFromEnv loads the administrator settings.
func LoadAdminConfigFromEnv() (AdminConfig, error) {
	var cfg AdminConfig
	if err := env.Parse(&cfg); err != nil {
		return AdminConfig{}, fmt.Errorf("parse admin env: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the settings used when no environment is present.
func DefaultConfig() Config {
	return Config{
		VerificationTokenTTL: 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		StoreTimeout:         5 * time.Second,
		MailTimeout:          10 * time.Second,
		BcryptCost:           10,
		AllowedRoles:         []string{"ADMIN", "USER"},
		AdminRole:            "ADMIN",
		DefaultRole:          "USER",
		PhoneRegion:          "GT",
		DefaultAvatar:        "default-avatar.png",
	}
}

// RoleSet is the resolved allowed-role configuration.
type RoleSet struct {
	Allowed []entity.RoleName
	Admin   entity.RoleName
	Default entity.RoleName
}

// Allows reports whether r is in the allowed set.
func (s RoleSet) Allows(r entity.RoleName) bool {
	for _, a := range s.Allowed {
		if a == r {
			return true
		}
	}
	return false
}

// Roles parses the configured role names. Unknown names are a configuration error.
func (c Config) Roles() (RoleSet, error) {
	var set RoleSet
	for _, s := range c.AllowedRoles {
		r, ok := entity.ParseRole(s)
		if !ok {
			return RoleSet{}, fmt.Errorf("ALLOWED_ROLES: unknown role %q", s)
		}
		if !set.Allows(r) {
			set.Allowed = append(set.Allowed, r)
		}
	}
	admin, ok := entity.ParseRole(c.AdminRole)
	if !ok || !set.Allows(admin) {
		return RoleSet{}, fmt.Errorf("ADMIN_ROLE %q is not an allowed role", c.AdminRole)
	}
	def, ok := entity.ParseRole(c.DefaultRole)
	if !ok || !set.Allows(def) {
		return RoleSet{}, fmt.Errorf("DEFAULT_ROLE %q is not an allowed role", c.DefaultRole)
	}
	set.Admin, set.Default = admin, def
	return set, nil
}
