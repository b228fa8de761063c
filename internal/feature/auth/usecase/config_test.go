package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opinion_backend/internal/feature/auth/domain/entity"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VERIFICATION_TOKEN_TTL", "2h")
	t.Setenv("ALLOWED_ROLES", "admin_role,user")
	t.Setenv("DEFAULT_ROLE", "user_role")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.VerificationTokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, "GT", cfg.PhoneRegion)

	roles, err := cfg.Roles()
	require.NoError(t, err)
	assert.Equal(t, []entity.RoleName{entity.RoleAdmin, entity.RoleUser}, roles.Allowed)
	assert.Equal(t, entity.RoleAdmin, roles.Admin)
	assert.Equal(t, entity.RoleUser, roles.Default)
}

func TestLoadConfigFromEnv_UnknownRole(t *testing.T) {
	t.Setenv("ALLOWED_ROLES", "ADMIN,USER,OWNER")

	_, err := LoadConfigFromEnv()
	assert.Error(t, err)
}

func TestConfig_RolesAdminMustBeAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedRoles = []string{"USER"}

	_, err := cfg.Roles()
	assert.Error(t, err)
}

func TestLoadAdminConfigFromEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "root@example.com")

	cfg, err := LoadAdminConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "root@example.com", cfg.Email)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "Admin1234", cfg.Password)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+50255551234", normalizePhone("5555-1234", "GT"))
	assert.Equal(t, "+14155552671", normalizePhone("+1 415 555 2671", "GT"))
	assert.Equal(t, "00000000", normalizePhone(" 00000000 ", "GT"), "unparseable numbers are kept")
	assert.Equal(t, "", normalizePhone("  ", "GT"))
}
