package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
	"opinion_backend/internal/feature/auth/usecase"
)

// roleGorm is the role assignment engine backed by gorm.
type roleGorm struct {
	db *gorm.DB
}

var _ usecase.RoleRepository = (*roleGorm)(nil)

// NewRoleGorm creates a role repository over db.
func NewRoleGorm(db *gorm.DB) *roleGorm {
	return &roleGorm{db: db}
}

// EnsureRoles inserts missing role rows. Existing rows are left as they are.
func (r *roleGorm) EnsureRoles(ctx context.Context, roles []entity.RoleName) error {
	if len(roles) == 0 {
		return nil
	}
	rows := make([]RoleModel, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, RoleModel{Name: role.String()})
	}
	err := conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}
	return nil
}

// SetSingleRole locks the account row, deletes every assignment of the account
// and inserts one for role, all in one transaction. Concurrent calls for the same
// account serialize on the row lock; the last commit wins.
//
// The role must have been validated by the caller. SQLite ignores FOR UPDATE and
// serializes writers instead.
func (r *roleGorm) SetSingleRole(ctx context.Context, accountID uint, role entity.RoleName) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		var rm RoleModel
		if err := tx.Where("name = ?", role.String()).First(&rm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRoleNotFound
			}
			return err
		}

		var acct AccountModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", accountID).
			First(&acct).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}

		if err := tx.Where("account_id = ?", accountID).Delete(&AccountRoleModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&AccountRoleModel{AccountID: accountID, RoleID: rm.ID}).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrRoleNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return err
	default:
		return fmt.Errorf("set single role: %w", err)
	}
}

// RoleNames returns the names of the roles assigned to the account.
func (r *roleGorm) RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error) {
	var names []string
	err := conn(ctx, r.db).Model(&AccountRoleModel{}).
		Joins("JOIN roles ON roles.id = account_roles.role_id").
		Where("account_roles.account_id = ?", accountID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("role names: %w", err)
	}
	roles := make([]entity.RoleName, 0, len(names))
	for _, n := range names {
		roles = append(roles, entity.RoleName(n))
	}
	return roles, nil
}

// AccountsByRole lists accounts holding role, ordered by id.
func (r *roleGorm) AccountsByRole(ctx context.Context, role entity.RoleName) ([]*entity.Account, error) {
	assigned := conn(ctx, r.db).Model(&AccountRoleModel{}).
		Select("account_roles.account_id").
		Joins("JOIN roles ON roles.id = account_roles.role_id").
		Where("roles.name = ?", role.String())

	var models []AccountModel
	if err := withAggregate(conn(ctx, r.db)).Where("id IN (?)", assigned).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("accounts by role: %w", err)
	}
	accounts := make([]*entity.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, models[i].ToEntity())
	}
	return accounts, nil
}
