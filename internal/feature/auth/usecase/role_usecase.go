package usecase

import (
	"context"
	"log/slog"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

// roleUsecase exposes role administration on top of the assignment engine.
type roleUsecase struct {
	deps   Deps
	cfg    Config
	roles  RoleSet
	logger *slog.Logger
}

// NewRoleUsecase creates a role usecase.
func NewRoleUsecase(deps Deps, cfg Config) (*roleUsecase, error) {
	roles, err := cfg.Roles()
	if err != nil {
		return nil, err
	}
	return &roleUsecase{deps: deps, cfg: cfg, roles: roles, logger: deps.logger()}, nil
}

// allowed parses name and checks it against the configured set.
func (u *roleUsecase) allowed(name string) (entity.RoleName, error) {
	role, ok := entity.ParseRole(name)
	if !ok || !u.roles.Allows(role) {
		return "", domain.ErrRoleNotAllowed
	}
	return role, nil
}

// AssignRole replaces the account's role with roleName.
func (u *roleUsecase) AssignRole(ctx context.Context, accountID uint, roleName string) (AccountView, error) {
	role, err := u.allowed(roleName)
	if err != nil {
		return AccountView{}, err
	}

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	if _, err := u.deps.Accounts.FindByID(sctx, accountID); err != nil {
		return AccountView{}, storeError(u.logger, "assign_role", err)
	}
	if err := u.deps.Roles.SetSingleRole(sctx, accountID, role); err != nil {
		return AccountView{}, storeError(u.logger, "assign_role", err)
	}
	account, err := u.deps.Accounts.FindByID(sctx, accountID)
	if err != nil {
		return AccountView{}, storeError(u.logger, "assign_role", err)
	}
	u.logger.Info("role assigned", "account_id", accountID, "role", role)
	return newAccountView(account, u.cfg.DefaultAvatar), nil
}

// RoleNames returns the roles of an existing account.
func (u *roleUsecase) RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error) {
	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	if _, err := u.deps.Accounts.FindByID(sctx, accountID); err != nil {
		return nil, storeError(u.logger, "role_names", err)
	}
	names, err := u.deps.Roles.RoleNames(sctx, accountID)
	if err != nil {
		return nil, storeError(u.logger, "role_names", err)
	}
	return names, nil
}

// AccountsByRole lists the accounts holding roleName.
func (u *roleUsecase) AccountsByRole(ctx context.Context, roleName string) ([]AccountView, error) {
	role, err := u.allowed(roleName)
	if err != nil {
		return nil, err
	}

	sctx, cancel := withTimeout(ctx, u.cfg.StoreTimeout)
	defer cancel()

	accounts, err := u.deps.Roles.AccountsByRole(sctx, role)
	if err != nil {
		return nil, storeError(u.logger, "accounts_by_role", err)
	}
	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, newAccountView(a, u.cfg.DefaultAvatar))
	}
	return views, nil
}
