package usecase

import (
	"context"
	"time"

	"opinion_backend/internal/feature/auth/domain/entity"
)

// AccountRepository abstracts persistence of the account aggregate
// (Account, Profile, EmailVerification, PasswordReset).
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AccountRepository interface {
	// Create persists the whole aggregate atomically and sets a.ID.
	// A unique-constraint rejection returns domain.ErrDuplicateAccount.
	Create(ctx context.Context, a *entity.Account) error

	// EnsureAggregate inserts whichever of Profile/EmailVerification/PasswordReset
	// rows are missing for a.ID, leaving existing rows untouched.
	EnsureAggregate(ctx context.Context, a *entity.Account) error

	FindByID(ctx context.Context, id uint) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// FindByEmailOrUsername resolves a login identifier against both columns.
	FindByEmailOrUsername(ctx context.Context, identifier string) (*entity.Account, error)

	// EmailTaken and UsernameTaken report whether another account (id != exceptID) uses the value.
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)

	UpdateProfileFields(ctx context.Context, id uint, patch entity.AccountPatch) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetActive(ctx context.Context, id uint, active bool) error

	FindVerificationByToken(ctx context.Context, token string) (*entity.EmailVerification, error)
	SaveVerificationToken(ctx context.Context, id uint, token string, expiresAt time.Time) error
	// ConsumeVerificationToken marks the email verified and nulls the token only
	// if the stored token still equals token. Otherwise domain.ErrTokenNotFound.
	ConsumeVerificationToken(ctx context.Context, id uint, token string) error
	// MarkEmailVerified sets verified=true unconditionally and clears any token.
	MarkEmailVerified(ctx context.Context, id uint) error

	FindResetByToken(ctx context.Context, token string) (*entity.PasswordReset, error)
	SaveResetToken(ctx context.Context, id uint, token string, expiresAt time.Time) error
	// ConsumeResetToken nulls the reset token and records the reset time only if
	// the stored token still equals token. Otherwise domain.ErrTokenNotFound.
	ConsumeResetToken(ctx context.Context, id uint, token string, at time.Time) error
	ClearResetToken(ctx context.Context, id uint) error
}

// RoleRepository is the role assignment engine.
type RoleRepository interface {
	// EnsureRoles inserts the role rows that do not exist yet.
	EnsureRoles(ctx context.Context, roles []entity.RoleName) error

	// SetSingleRole replaces every assignment of the account with exactly one
	// assignment of role. The caller validates role against the allowed set.
	SetSingleRole(ctx context.Context, accountID uint, role entity.RoleName) error

	RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error)
	AccountsByRole(ctx context.Context, role entity.RoleName) ([]*entity.Account, error)
}

// TxManager runs fn inside a store transaction carried by the returned context.
// Nested calls join the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(digest, plain string) bool
}

// TokenIssuer creates opaque single-use tokens.
type TokenIssuer interface {
	Issue(ttl time.Duration) (string, time.Time, error)
}

// BearerIssuer mints signed bearer tokens.
type BearerIssuer interface {
	GenerateToken(accountID uint, role string) (string, time.Time, error)
}

// Mail templates sent by the lifecycle operations.
const (
	TemplateVerifyEmail   = "verify-email"
	TemplateResetPassword = "reset-password"
)

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, template, to, token string) error
}

// MediaStore stores an uploaded file and returns its public reference.
type MediaStore interface {
	Upload(ctx context.Context, localPath, desiredName string) (string, error)
}
