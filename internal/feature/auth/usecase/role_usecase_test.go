package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

func TestRoleUsecase_AssignRole(t *testing.T) {
	ctx := context.Background()
	found := func(uint) (*entity.Account, error) { return &entity.Account{ID: 2}, nil }

	t.Run("normalizes legacy role names", func(t *testing.T) {
		var assigned entity.RoleName
		deps, _, _ := testDeps(&mockAccountRepository{FindByIDFunc: found})
		deps.Roles = &mockRoleRepository{
			SetSingleRoleFunc: func(id uint, role entity.RoleName) error {
				assigned = role
				return nil
			},
		}
		uc, err := NewRoleUsecase(deps, DefaultConfig())
		require.NoError(t, err)

		_, err = uc.AssignRole(ctx, 2, "admin_role")

		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, assigned)
	})

	t.Run("role outside the allowed set", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AllowedRoles = []string{"USER"}
		cfg.AdminRole = "USER"
		deps, _, _ := testDeps(&mockAccountRepository{FindByIDFunc: found})
		uc, err := NewRoleUsecase(deps, cfg)
		require.NoError(t, err)

		_, err = uc.AssignRole(ctx, 2, "ADMIN")
		assert.ErrorIs(t, err, domain.ErrRoleNotAllowed)

		_, err = uc.AssignRole(ctx, 2, "OWNER")
		assert.ErrorIs(t, err, domain.ErrRoleNotAllowed)
	})

	t.Run("unknown account", func(t *testing.T) {
		deps, _, _ := testDeps(&mockAccountRepository{})
		deps.Roles = &mockRoleRepository{
			SetSingleRoleFunc: func(uint, entity.RoleName) error {
				t.Error("engine must not be called")
				return nil
			},
		}
		uc, err := NewRoleUsecase(deps, DefaultConfig())
		require.NoError(t, err)

		_, err = uc.AssignRole(ctx, 2, "USER")

		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestRoleUsecase_Listing(t *testing.T) {
	ctx := context.Background()
	deps, _, _ := testDeps(&mockAccountRepository{
		FindByIDFunc: func(uint) (*entity.Account, error) { return &entity.Account{ID: 2}, nil },
	})
	deps.Roles = &mockRoleRepository{
		RoleNamesFunc: func(uint) ([]entity.RoleName, error) {
			return []entity.RoleName{entity.RoleUser}, nil
		},
		AccountsByRoleFunc: func(role entity.RoleName) ([]*entity.Account, error) {
			assert.Equal(t, entity.RoleAdmin, role)
			return []*entity.Account{{ID: 1, Username: "admin", Role: entity.RoleAdmin}}, nil
		},
	}
	uc, err := NewRoleUsecase(deps, DefaultConfig())
	require.NoError(t, err)

	names, err := uc.RoleNames(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []entity.RoleName{entity.RoleUser}, names)

	views, err := uc.AccountsByRole(ctx, "Admin")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "admin", views[0].Username)

	_, err = uc.AccountsByRole(ctx, "guest")
	assert.ErrorIs(t, err, domain.ErrRoleNotAllowed)
}
