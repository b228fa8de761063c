package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

// UpdateProfileInput is a partial profile update. Nil fields are not changed.
type UpdateProfileInput struct {
	Name     *string
	Surname  *string
	Username *string
	Phone    *string

	CurrentPassword string
	NewPassword     string

	// AvatarPath is a local file received by the transport, empty when the avatar
	// is not being changed.
	AvatarPath string
}

// profileUsecase reads and updates account profiles.
type profileUsecase struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger
}

// NewProfileUsecase creates a profile usecase.
func NewProfileUsecase(deps Deps, cfg Config) *profileUsecase {
	return &profileUsecase{deps: deps, cfg: cfg, logger: deps.logger()}
}

// GetProfile returns the account view.
func (u *profileUsecase) GetProfile(ctx context.Context, accountID uint) (AccountView, error) {
	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	account, err := u.deps.Accounts.FindByID(sctx, accountID)
	if err != nil {
		return AccountView{}, storeError(u.logger, "get_profile", err)
	}
	return newAccountView(account, u.cfg.DefaultAvatar), nil
}

// UpdateProfile applies the fields of in that differ from the stored account.
//
// A username change must not collide with another account. A new password needs
// the current one. The avatar upload is best-effort: its failure is reported as
// WarnAvatarUploadFailed and the other fields are still written.
func (u *profileUsecase) UpdateProfile(ctx context.Context, accountID uint, in UpdateProfileInput) (Result[AccountView], error) {
	var res Result[AccountView]

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	account, err := u.deps.Accounts.FindByID(sctx, accountID)
	if err != nil {
		return res, storeError(u.logger, "update_profile", err)
	}

	patch, err := u.diff(sctx, account, in)
	if err != nil {
		return res, err
	}

	uploadFailed := false
	if in.AvatarPath != "" {
		ref, err := u.upload(ctx, account.ID, in.AvatarPath)
		switch {
		case err != nil:
			u.logger.Warn("avatar upload failed", "op", "update_profile", "account_id", account.ID, "error", err)
			res.warn(WarnAvatarUploadFailed, "profile picture could not be uploaded")
			uploadFailed = true
		case ref != account.Profile.Avatar:
			patch.Avatar = &ref
		}
	}

	if patch.IsEmpty() {
		if uploadFailed {
			res.Value = newAccountView(account, u.cfg.DefaultAvatar)
			return res, nil
		}
		return res, domain.ErrNothingToUpdate
	}

	if err := u.deps.Accounts.UpdateProfileFields(sctx, account.ID, patch); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return res, domain.ErrUsernameTaken
		}
		return res, storeError(u.logger, "update_profile", err)
	}

	updated, err := u.deps.Accounts.FindByID(sctx, account.ID)
	if err != nil {
		return res, storeError(u.logger, "update_profile", err)
	}
	res.Value = newAccountView(updated, u.cfg.DefaultAvatar)
	return res, nil
}

// diff builds the patch of changed fields and runs the checks that can fail
// the update. It performs no writes.
func (u *profileUsecase) diff(ctx context.Context, account *entity.Account, in UpdateProfileInput) (entity.AccountPatch, error) {
	var patch entity.AccountPatch

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return patch, domain.Validation("name must not be empty")
		}
		if name != account.Name {
			patch.Name = &name
		}
	}
	if in.Surname != nil {
		if surname := strings.TrimSpace(*in.Surname); surname != account.Surname {
			patch.Surname = &surname
		}
	}
	if in.Phone != nil {
		if phone := normalizePhone(*in.Phone, u.cfg.PhoneRegion); phone != account.Profile.Phone {
			patch.Phone = &phone
		}
	}

	if in.Username != nil {
		username := entity.NormalizeUsername(*in.Username)
		if username != account.Username {
			if err := validateUsername(username); err != nil {
				return patch, invalid("username", err)
			}
			taken, err := u.deps.Accounts.UsernameTaken(ctx, username, account.ID)
			if err != nil {
				return patch, storeError(u.logger, "update_profile", err)
			}
			if taken {
				return patch, domain.ErrUsernameTaken
			}
			patch.Username = &username
		}
	}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return patch, domain.ErrCurrentPasswordRequired
		}
		if !u.deps.Hasher.Verify(account.PasswordHash, in.CurrentPassword) {
			return patch, domain.ErrCurrentPasswordIncorrect
		}
		if err := validatePassword(in.NewPassword); err != nil {
			return patch, invalid("newPassword", err)
		}
		hash, err := u.deps.Hasher.Hash(in.NewPassword)
		if err != nil {
			return patch, domain.Internal(err)
		}
		patch.PasswordHash = &hash
	}
	return patch, nil
}

func (u *profileUsecase) upload(ctx context.Context, accountID uint, localPath string) (string, error) {
	if u.deps.Media == nil {
		return "", errors.New("no media store configured")
	}
	uctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()
	name := fmt.Sprintf("profile-%d%s", accountID, strings.ToLower(filepath.Ext(localPath)))
	return u.deps.Media.Upload(uctx, localPath, name)
}

// SetActive deactivates or reactivates an account.
func (u *profileUsecase) SetActive(ctx context.Context, accountID uint, active bool) (AccountView, error) {
	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	if err := u.deps.Accounts.SetActive(sctx, accountID, active); err != nil {
		return AccountView{}, storeError(u.logger, "set_active", err)
	}
	account, err := u.deps.Accounts.FindByID(sctx, accountID)
	if err != nil {
		return AccountView{}, storeError(u.logger, "set_active", err)
	}
	u.logger.Info("account active flag changed", "account_id", accountID, "active", active)
	return newAccountView(account, u.cfg.DefaultAvatar), nil
}
