package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   RoleName
		wantOK bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" ADMIN_ROLE ", RoleAdmin, true},
		{"user_role", RoleUser, true},
		{"USER", RoleUser, true},
		{"OWNER", RoleName("OWNER"), false},
		{"", RoleName(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmailVerification_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&EmailVerification{ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&EmailVerification{ExpiresAt: &now}).IsExpired(now), "expiry instant is already expired")
	assert.False(t, (&EmailVerification{ExpiresAt: &future}).IsExpired(now))
	assert.True(t, (&EmailVerification{}).IsExpired(now), "missing expiry is expired")
	assert.True(t, (&PasswordReset{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&PasswordReset{ExpiresAt: &future}).IsExpired(now))
}

func TestAccount_State(t *testing.T) {
	t.Parallel()

	a := &Account{}
	assert.Equal(t, StatePendingVerification, a.State())
	a.Verification.Verified = true
	assert.Equal(t, StateVerified, a.State())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
	assert.Equal(t, "alice", NormalizeUsername("Alice"))
}
