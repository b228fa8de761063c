// Package entity defines the domain entities for the auth feature.
package entity

import (
	"strings"
	"time"
)

// Account is the identity record together with the rows that are always created
// and repaired with it (profile, email verification, password reset).
type Account struct {
	// ID is the unique identifier for the account.
	ID uint

	// Name and Surname are display fields.
	Name    string
	Surname string

	// Username and Email are unique and stored lower-case.
	Username string
	Email    string

	// PasswordHash is the bcrypt digest. Never a plaintext password.
	PasswordHash string

	// Active is false for deactivated accounts. Accounts are never hard-deleted.
	Active bool

	Profile      Profile
	Verification EmailVerification
	Reset        PasswordReset

	// Role is the single active role, empty if none has been assigned.
	Role RoleName

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds contact and presentation data, 1:1 with Account.
type Profile struct {
	AccountID uint
	Phone     string
	Avatar    string
}

// EmailVerification tracks whether the account's email has been confirmed.
type EmailVerification struct {
	AccountID uint
	Verified  bool
	Token     string     // empty once consumed
	ExpiresAt *time.Time // nil once consumed
}

// PasswordReset holds the pending reset token, if any.
type PasswordReset struct {
	AccountID   uint
	Token       string
	ExpiresAt   *time.Time
	LastResetAt *time.Time
}

// State is the verification state derived from EmailVerification.
type State string

const (
	StatePendingVerification State = "PENDING_VERIFICATION"
	StateVerified            State = "VERIFIED"
)

// State returns the verification state of the account.
func (a *Account) State() State {
	if a.Verification.Verified {
		return StateVerified
	}
	return StatePendingVerification
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername lower-cases and trims a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsExpired reports whether the verification token is past its expiry at now.
// A token without an expiry is treated as expired.
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return tokenExpired(v.ExpiresAt, now)
}

// IsExpired reports whether the reset token is past its expiry at now.
func (r *PasswordReset) IsExpired(now time.Time) bool {
	return tokenExpired(r.ExpiresAt, now)
}

func tokenExpired(expiresAt *time.Time, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	return !now.Before(*expiresAt)
}

// AccountPatch lists the account and profile fields a profile update may change.
// Nil fields are left untouched.
type AccountPatch struct {
	Name         *string
	Surname      *string
	Username     *string
	Phone        *string
	Avatar       *string
	PasswordHash *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Username == nil &&
		p.Phone == nil && p.Avatar == nil && p.PasswordHash == nil
}
