package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
	"opinion_backend/internal/feature/auth/usecase"
)

// accountGorm is the gorm implementation of usecase.AccountRepository.
type accountGorm struct {
	db *gorm.DB
}

// accountGormがAccountRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.AccountRepository = (*accountGorm)(nil)

// NewAccountGorm creates an account repository over db.
func NewAccountGorm(db *gorm.DB) *accountGorm {
	return &accountGorm{db: db}
}

// withAggregate preloads every row of the aggregate plus the role assignment.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.Preload("Profile").
		Preload("Verification").
		Preload("Reset").
		Preload("Assignment.Role")
}

// Create inserts the account and its Profile, EmailVerification and PasswordReset
// rows in one transaction.
func (r *accountGorm) Create(ctx context.Context, a *entity.Account) error {
	m := AccountModel{
		Name:         a.Name,
		Surname:      a.Surname,
		Username:     entity.NormalizeUsername(a.Username),
		Email:        entity.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		Active:       a.Active,
	}

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		a.ID = m.ID
		return createChildren(tx, a)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateAccount
		}
		return fmt.Errorf("create account: %w", err)
	}

	a.Username, a.Email = m.Username, m.Email
	a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
	a.Profile.AccountID = a.ID
	a.Verification.AccountID = a.ID
	a.Reset.AccountID = a.ID
	return nil
}

func createChildren(tx *gorm.DB, a *entity.Account) error {
	profile := ProfileModel{AccountID: a.ID, Phone: a.Profile.Phone, Avatar: a.Profile.Avatar}
	if err := tx.Create(&profile).Error; err != nil {
		return err
	}
	verification := EmailVerificationModel{
		AccountID: a.ID,
		Verified:  a.Verification.Verified,
		Token:     nullable(a.Verification.Token),
		ExpiresAt: a.Verification.ExpiresAt,
	}
	if err := tx.Create(&verification).Error; err != nil {
		return err
	}
	reset := PasswordResetModel{AccountID: a.ID}
	return tx.Create(&reset).Error
}

// EnsureAggregate creates the child rows that are missing for a.ID. Existing rows
// are not modified.
func (r *accountGorm) EnsureAggregate(ctx context.Context, a *entity.Account) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ProfileModel{}).Where("account_id = ?", a.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			p := ProfileModel{AccountID: a.ID, Phone: a.Profile.Phone, Avatar: a.Profile.Avatar}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&EmailVerificationModel{}).Where("account_id = ?", a.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			v := EmailVerificationModel{AccountID: a.ID, Verified: a.Verification.Verified}
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&PasswordResetModel{}).Where("account_id = ?", a.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&PasswordResetModel{AccountID: a.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ensure aggregate: %w", err)
	}
	return nil
}

func (r *accountGorm) findOne(ctx context.Context, query string, args ...any) (*entity.Account, error) {
	var m AccountModel
	if err := withAggregate(conn(ctx, r.db)).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return m.ToEntity(), nil
}

// FindByID returns domain.ErrAccountNotFound when no account has id.
func (r *accountGorm) FindByID(ctx context.Context, id uint) (*entity.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *accountGorm) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = ?", entity.NormalizeEmail(email))
}

func (r *accountGorm) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.findOne(ctx, "username = ?", entity.NormalizeUsername(username))
}

// FindByEmailOrUsername tries the email column first so an address that happens
// to equal someone else's username resolves to its owner.
func (r *accountGorm) FindByEmailOrUsername(ctx context.Context, identifier string) (*entity.Account, error) {
	a, err := r.FindByEmail(ctx, identifier)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return a, err
	}
	return r.FindByUsername(ctx, identifier)
}

func (r *accountGorm) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	q := conn(ctx, r.db).Model(&AccountModel{}).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return count > 0, nil
}

func (r *accountGorm) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "email", entity.NormalizeEmail(email), exceptID)
}

func (r *accountGorm) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return r.taken(ctx, "username", entity.NormalizeUsername(username), exceptID)
}

// UpdateProfileFields applies the non-nil fields of patch to the account and
// profile rows in one transaction.
func (r *accountGorm) UpdateProfileFields(ctx context.Context, id uint, patch entity.AccountPatch) error {
	accountCols := map[string]any{}
	if patch.Name != nil {
		accountCols["name"] = *patch.Name
	}
	if patch.Surname != nil {
		accountCols["surname"] = *patch.Surname
	}
	if patch.Username != nil {
		accountCols["username"] = entity.NormalizeUsername(*patch.Username)
	}
	if patch.PasswordHash != nil {
		accountCols["password_hash"] = *patch.PasswordHash
	}
	profileCols := map[string]any{}
	if patch.Phone != nil {
		profileCols["phone"] = *patch.Phone
	}
	if patch.Avatar != nil {
		profileCols["avatar"] = *patch.Avatar
	}

	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		if len(accountCols) > 0 {
			res := tx.Model(&AccountModel{}).Where("id = ?", id).Updates(accountCols)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrAccountNotFound
			}
		}
		if len(profileCols) > 0 {
			res := tx.Model(&ProfileModel{}).Where("account_id = ?", id).Updates(profileCols)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrAccountNotFound
			}
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAccountNotFound):
		return domain.ErrAccountNotFound
	case isDuplicateKey(err):
		return domain.ErrDuplicateAccount
	default:
		return fmt.Errorf("update profile: %w", err)
	}
}

func (r *accountGorm) updateAccount(ctx context.Context, id uint, cols map[string]any) error {
	res := conn(ctx, r.db).Model(&AccountModel{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return fmt.Errorf("update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountGorm) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.updateAccount(ctx, id, map[string]any{"password_hash": hash})
}

// SetActive toggles the active flag. Map updates keep false from being skipped.
func (r *accountGorm) SetActive(ctx context.Context, id uint, active bool) error {
	return r.updateAccount(ctx, id, map[string]any{"active": active})
}

func (r *accountGorm) FindVerificationByToken(ctx context.Context, token string) (*entity.EmailVerification, error) {
	var m EmailVerificationModel
	if err := conn(ctx, r.db).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find verification token: %w", err)
	}
	v := m.ToEntity()
	return &v, nil
}

func (r *accountGorm) SaveVerificationToken(ctx context.Context, id uint, token string, expiresAt time.Time) error {
	res := conn(ctx, r.db).Model(&EmailVerificationModel{}).
		Where("account_id = ?", id).
		Updates(map[string]any{"token": token, "expires_at": expiresAt})
	if res.Error != nil {
		return fmt.Errorf("save verification token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ConsumeVerificationToken is a compare-and-clear: only one of several concurrent
// callers with the same token sees a row updated.
func (r *accountGorm) ConsumeVerificationToken(ctx context.Context, id uint, token string) error {
	res := conn(ctx, r.db).Model(&EmailVerificationModel{}).
		Where("account_id = ? AND token = ?", id, token).
		Updates(map[string]any{"verified": true, "token": nil, "expires_at": nil})
	if res.Error != nil {
		return fmt.Errorf("consume verification token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *accountGorm) MarkEmailVerified(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Model(&EmailVerificationModel{}).
		Where("account_id = ?", id).
		Updates(map[string]any{"verified": true, "token": nil, "expires_at": nil})
	if res.Error != nil {
		return fmt.Errorf("mark email verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountGorm) FindResetByToken(ctx context.Context, token string) (*entity.PasswordReset, error) {
	var m PasswordResetModel
	if err := conn(ctx, r.db).Where("token = ?", token).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find reset token: %w", err)
	}
	p := m.ToEntity()
	return &p, nil
}

func (r *accountGorm) SaveResetToken(ctx context.Context, id uint, token string, expiresAt time.Time) error {
	res := conn(ctx, r.db).Model(&PasswordResetModel{}).
		Where("account_id = ?", id).
		Updates(map[string]any{"token": token, "expires_at": expiresAt})
	if res.Error != nil {
		return fmt.Errorf("save reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountGorm) ConsumeResetToken(ctx context.Context, id uint, token string, at time.Time) error {
	res := conn(ctx, r.db).Model(&PasswordResetModel{}).
		Where("account_id = ? AND token = ?", id, token).
		Updates(map[string]any{"token": nil, "expires_at": nil, "last_reset_at": at})
	if res.Error != nil {
		return fmt.Errorf("consume reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *accountGorm) ClearResetToken(ctx context.Context, id uint) error {
	err := conn(ctx, r.db).Model(&PasswordResetModel{}).
		Where("account_id = ?", id).
		Updates(map[string]any{"token": nil, "expires_at": nil}).Error
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}
