// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

// RegisterOutput is the created account and the expiry of its first
// verification token.
type RegisterOutput struct {
	Account               AccountView
	VerificationExpiresAt time.Time
}

// LoginOutput carries the bearer token and a minimal profile.
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	Account   AccountView
}

// ResendOutput reports when the new verification token expires.
type ResendOutput struct {
	ExpiresAt time.Time
}

// ForgotOutput is identical for known and unknown emails. Initiated is false only
// when a reset token was stored but the mail could not be sent; the transport
// must not expose it.
type ForgotOutput struct {
	Initiated bool
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	deps   Deps
	cfg    Config
	roles  RoleSet
	logger *slog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(deps Deps, cfg Config) (*authUsecase, error) {
	roles, err := cfg.Roles()
	if err != nil {
		return nil, err
	}
	return &authUsecase{
		deps:   deps,
		cfg:    cfg,
		roles:  roles,
		logger: deps.logger(),
		now:    time.Now,
	}, nil
}

// Register creates the account aggregate with the default role, then sends the
// verification mail. A mail failure leaves the account in place and is reported
// as WarnMailUnavailable.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (Result[RegisterOutput], error) {
	var res Result[RegisterOutput]
	if err := in.Validate(); err != nil {
		return res, invalid("", err)
	}

	email := entity.NormalizeEmail(in.Email)
	username := entity.NormalizeUsername(in.Username)

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	taken, err := u.deps.Accounts.EmailTaken(sctx, email, 0)
	if err != nil {
		return res, storeError(u.logger, "register", err)
	}
	if taken {
		return res, domain.ErrEmailTaken
	}
	taken, err = u.deps.Accounts.UsernameTaken(sctx, username, 0)
	if err != nil {
		return res, storeError(u.logger, "register", err)
	}
	if taken {
		return res, domain.ErrUsernameTaken
	}

	hash, err := u.deps.Hasher.Hash(in.Password)
	if err != nil {
		return res, domain.Internal(err)
	}
	token, expiresAt, err := u.deps.Tokens.Issue(u.cfg.VerificationTokenTTL)
	if err != nil {
		return res, domain.Internal(err)
	}

	account := &entity.Account{
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Profile: entity.Profile{
			Phone:  normalizePhone(in.Phone, u.cfg.PhoneRegion),
			Avatar: in.Avatar,
		},
		Verification: entity.EmailVerification{Token: token, ExpiresAt: &expiresAt},
		Role:         u.roles.Default,
	}

	err = u.deps.Tx.WithinTx(sctx, func(ctx context.Context) error {
		if err := u.deps.Accounts.Create(ctx, account); err != nil {
			return err
		}
		return u.deps.Roles.SetSingleRole(ctx, account.ID, u.roles.Default)
	})
	if errors.Is(err, domain.ErrRoleNotFound) {
		u.logger.Error("default role is not seeded", "op", "register", "role", u.roles.Default)
		return res, domain.Internal(err)
	}
	if err != nil {
		return res, storeError(u.logger, "register", err)
	}
	u.logger.Info("account registered", "account_id", account.ID)

	res.Value = RegisterOutput{
		Account:               newAccountView(account, u.cfg.DefaultAvatar),
		VerificationExpiresAt: expiresAt,
	}
	if err := u.send(ctx, TemplateVerifyEmail, email, token); err != nil {
		u.logger.Warn("verification mail not sent", "op", "register", "account_id", account.ID, "error", err)
		res.warn(WarnMailUnavailable, "verification email could not be sent")
	}
	return res, nil
}

// send bounds a mail call by MailTimeout. It holds no lock.
func (u *authUsecase) send(ctx context.Context, template, to, token string) error {
	mctx, cancel := withTimeout(ctx, u.cfg.MailTimeout)
	defer cancel()
	return u.deps.Mailer.Send(mctx, template, to, token)
}

// dummy returns a hash compared against when the identifier is unknown, so a miss
// costs the same bcrypt work as a wrong password.
func (u *authUsecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.deps.Hasher.Hash("dummy-password-for-timing")
		if err != nil {
			u.logger.Error("failed to build dummy hash", "error", err)
		}
		u.dummyHash = h
	})
	return u.dummyHash
}

// Login はユーザーを認証し、成功時にJWTトークンを返します。
// Unknown identifiers and wrong passwords both return ErrInvalidCredentials.
// Deactivation is checked after the password so it cannot be probed without one.
func (u *authUsecase) Login(ctx context.Context, identifier, password string) (LoginOutput, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginOutput{}, domain.ErrInvalidCredentials
	}

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	account, err := u.deps.Accounts.FindByEmailOrUsername(sctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// タイミング攻撃防止のため、常にパスワードを検証
			u.deps.Hasher.Verify(u.dummy(), password)
			return LoginOutput{}, domain.ErrInvalidCredentials
		}
		return LoginOutput{}, storeError(u.logger, "login", err)
	}

	if !u.deps.Hasher.Verify(account.PasswordHash, password) {
		return LoginOutput{}, domain.ErrInvalidCredentials
	}
	if !account.Active {
		return LoginOutput{}, domain.ErrAccountLocked
	}

	token, expiresAt, err := u.deps.Bearer.GenerateToken(account.ID, account.Role.String())
	if err != nil {
		return LoginOutput{}, domain.Internal(err)
	}
	return LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   newAccountView(account, u.cfg.DefaultAvatar),
	}, nil
}

// VerifyEmail consumes a verification token. Checks run in the order
// NOT_FOUND, TOKEN_EXPIRED, ALREADY_VERIFIED.
func (u *authUsecase) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid
	}

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	v, err := u.deps.Accounts.FindVerificationByToken(sctx, token)
	if err != nil {
		return storeError(u.logger, "verify_email", err)
	}
	if v.IsExpired(u.now()) {
		return domain.ErrTokenExpired
	}
	if v.Verified {
		return domain.ErrAlreadyVerified
	}
	if err := u.deps.Accounts.ConsumeVerificationToken(sctx, v.AccountID, token); err != nil {
		return storeError(u.logger, "verify_email", err)
	}
	u.logger.Info("email verified", "account_id", v.AccountID)
	return nil
}

// ResendVerification replaces the verification token, invalidating the previous
// one. The new token is persisted even when the mail cannot be sent.
func (u *authUsecase) ResendVerification(ctx context.Context, email string) (Result[ResendOutput], error) {
	var res Result[ResendOutput]
	if err := validateEmail(email); err != nil {
		return res, invalid("email", err)
	}
	email = entity.NormalizeEmail(email)

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	account, err := u.deps.Accounts.FindByEmail(sctx, email)
	if err != nil {
		return res, storeError(u.logger, "resend_verification", err)
	}
	if account.Verification.Verified {
		return res, domain.ErrAlreadyVerified
	}

	token, expiresAt, err := u.deps.Tokens.Issue(u.cfg.VerificationTokenTTL)
	if err != nil {
		return res, domain.Internal(err)
	}
	if err := u.deps.Accounts.SaveVerificationToken(sctx, account.ID, token, expiresAt); err != nil {
		return res, storeError(u.logger, "resend_verification", err)
	}

	res.Value = ResendOutput{ExpiresAt: expiresAt}
	if err := u.send(ctx, TemplateVerifyEmail, account.Email, token); err != nil {
		u.logger.Warn("verification mail not sent", "op", "resend_verification", "account_id", account.ID, "error", err)
		res.warn(WarnMailUnavailable, "verification email could not be sent")
	}
	return res, nil
}

// ForgotPassword stores a reset token for a known email and mails it. The
// returned shape does not depend on whether the account exists.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) (Result[ForgotOutput], error) {
	res := Result[ForgotOutput]{Value: ForgotOutput{Initiated: true}}
	if err := validateEmail(email); err != nil {
		return Result[ForgotOutput]{}, invalid("email", err)
	}
	email = entity.NormalizeEmail(email)

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	account, err := u.deps.Accounts.FindByEmail(sctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		u.logger.Debug("password reset requested for unknown email")
		return res, nil
	}
	if err != nil {
		return Result[ForgotOutput]{}, storeError(u.logger, "forgot_password", err)
	}

	token, expiresAt, err := u.deps.Tokens.Issue(u.cfg.ResetTokenTTL)
	if err != nil {
		return Result[ForgotOutput]{}, domain.Internal(err)
	}
	if err := u.deps.Accounts.SaveResetToken(sctx, account.ID, token, expiresAt); err != nil {
		return Result[ForgotOutput]{}, storeError(u.logger, "forgot_password", err)
	}

	if err := u.send(ctx, TemplateResetPassword, account.Email, token); err != nil {
		u.logger.Warn("reset mail not sent", "op", "forgot_password", "account_id", account.ID, "error", err)
		res.Value.Initiated = false
		res.warn(WarnMailUnavailable, "reset email could not be sent")
	}
	return res, nil
}

// ResetPassword consumes a reset token and replaces the password hash in one
// transaction. An expired token is cleared on the way out.
func (u *authUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrTokenInvalid
	}
	if err := validatePassword(newPassword); err != nil {
		return invalid("password", err)
	}

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	reset, err := u.deps.Accounts.FindResetByToken(sctx, token)
	if err != nil {
		return storeError(u.logger, "reset_password", err)
	}
	now := u.now()
	if reset.IsExpired(now) {
		if err := u.deps.Accounts.ClearResetToken(sctx, reset.AccountID); err != nil {
			u.logger.Warn("failed to clear expired reset token", "account_id", reset.AccountID, "error", err)
		}
		return domain.ErrTokenExpired
	}

	hash, err := u.deps.Hasher.Hash(newPassword)
	if err != nil {
		return domain.Internal(err)
	}
	err = u.deps.Tx.WithinTx(sctx, func(ctx context.Context) error {
		if err := u.deps.Accounts.ConsumeResetToken(ctx, reset.AccountID, token, now); err != nil {
			return err
		}
		return u.deps.Accounts.UpdatePassword(ctx, reset.AccountID, hash)
	})
	if err != nil {
		return storeError(u.logger, "reset_password", err)
	}
	u.logger.Info("password reset", "account_id", reset.AccountID)
	return nil
}
