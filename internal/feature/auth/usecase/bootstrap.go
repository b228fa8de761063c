package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
)

// AdminSeed describes the administrator ensured by the Seeder.
type AdminSeed struct {
	AccountID uint
	Email     string
	Username  string
	Token     string
	ExpiresAt time.Time
	// Created is true when this run inserted the account.
	Created bool
}

// Seeder idempotently prepares reference data and the administrator at startup.
type Seeder struct {
	deps   Deps
	cfg    Config
	roles  RoleSet
	admin  AdminConfig
	logger *slog.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(deps Deps, cfg Config, admin AdminConfig) (*Seeder, error) {
	roles, err := cfg.Roles()
	if err != nil {
		return nil, err
	}
	return &Seeder{deps: deps, cfg: cfg, roles: roles, admin: admin, logger: deps.logger()}, nil
}

// Run seeds the roles and then ensures the administrator.
func (s *Seeder) Run(ctx context.Context) (*AdminSeed, error) {
	if err := s.SeedRoles(ctx); err != nil {
		return nil, err
	}
	return s.EnsureAdmin(ctx)
}

// SeedRoles inserts the allowed role rows that are missing.
func (s *Seeder) SeedRoles(ctx context.Context) error {
	if err := s.deps.Roles.EnsureRoles(ctx, s.roles.Allowed); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

// EnsureAdmin creates the administrator or repairs an existing one, then assigns
// exactly one admin role. An existing administrator keeps its password.
//
// Two processes starting together may both try to create the account; the
// loser's insert fails on the unique index and it retries through the repair
// path.
func (s *Seeder) EnsureAdmin(ctx context.Context) (*AdminSeed, error) {
	email := entity.NormalizeEmail(s.admin.Email)
	username := entity.NormalizeUsername(s.admin.Username)
	if email == "" || username == "" {
		return nil, errors.New("admin email and username must be configured")
	}

	hash, err := s.deps.Hasher.Hash(s.admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	var seed *AdminSeed
	for attempt := 0; attempt < 2; attempt++ {
		seed, err = s.ensureAdminTx(ctx, email, username, hash)
		if !errors.Is(err, domain.ErrDuplicateAccount) {
			break
		}
		s.logger.Info("admin created concurrently, repairing instead")
	}
	if err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}

	token, expiresAt, err := s.deps.Bearer.GenerateToken(seed.AccountID, s.roles.Admin.String())
	if err != nil {
		return nil, fmt.Errorf("mint admin token: %w", err)
	}
	seed.Token, seed.ExpiresAt = token, expiresAt
	return seed, nil
}

func (s *Seeder) ensureAdminTx(ctx context.Context, email, username, hash string) (*AdminSeed, error) {
	var seed AdminSeed
	sctx, cancel := withTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	err := s.deps.Tx.WithinTx(sctx, func(ctx context.Context) error {
		existing, err := s.findAdmin(ctx, email, username)
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}

		profile := entity.Profile{
			Phone:  normalizePhone(s.admin.Phone, s.cfg.PhoneRegion),
			Avatar: s.cfg.DefaultAvatar,
		}

		if existing == nil {
			a := &entity.Account{
				Name:         s.admin.Name,
				Surname:      s.admin.Surname,
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Active:       true,
				Profile:      profile,
				Verification: entity.EmailVerification{Verified: true},
			}
			if err := s.deps.Accounts.Create(ctx, a); err != nil {
				return err
			}
			seed = AdminSeed{AccountID: a.ID, Email: a.Email, Username: a.Username, Created: true}
		} else {
			existing.Profile = profile
			existing.Verification.Verified = true
			if err := s.deps.Accounts.EnsureAggregate(ctx, existing); err != nil {
				return err
			}
			if err := s.deps.Accounts.SetActive(ctx, existing.ID, true); err != nil {
				return err
			}
			if err := s.deps.Accounts.MarkEmailVerified(ctx, existing.ID); err != nil {
				return err
			}
			seed = AdminSeed{AccountID: existing.ID, Email: existing.Email, Username: existing.Username}
		}

		return s.deps.Roles.SetSingleRole(ctx, seed.AccountID, s.roles.Admin)
	})
	if err != nil {
		return nil, err
	}
	return &seed, nil
}

// findAdmin looks the administrator up by email, then by username.
func (s *Seeder) findAdmin(ctx context.Context, email, username string) (*entity.Account, error) {
	a, err := s.deps.Accounts.FindByEmail(ctx, email)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return a, err
	}
	return s.deps.Accounts.FindByUsername(ctx, username)
}
