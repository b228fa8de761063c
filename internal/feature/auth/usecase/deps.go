package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"opinion_backend/internal/feature/auth/domain"
)

// Deps are the collaborators shared by the auth usecases.
type Deps struct {
	Accounts AccountRepository
	Roles    RoleRepository
	Tx       TxManager
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Bearer   BearerIssuer
	Mailer   Mailer
	Media    MediaStore
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storeError passes domain errors through and turns anything else into an
// INTERNAL error, logging the cause. Driver text never reaches the caller.
func storeError(logger *slog.Logger, op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	logger.Error("store operation failed", "op", op, "error", err,
		"timeout", errors.Is(err, context.DeadlineExceeded))
	return domain.Internal(err)
}
