package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "opinion_backend/internal/feature/auth/adapters"
	"opinion_backend/internal/feature/auth/domain/entity"
	authhandler "opinion_backend/internal/feature/auth/transport/handler"
	"opinion_backend/internal/feature/auth/usecase"
	jwtmw "opinion_backend/internal/platform/jwt"
	"opinion_backend/internal/platform/media"
	"opinion_backend/internal/platform/password"
	"opinion_backend/internal/platform/token"
)

// AuthConfig groups the settings of the auth feature.
type AuthConfig struct {
	Auth         usecase.Config
	Admin        usecase.AdminConfig
	JWT          jwtmw.Config
	Media        media.Config
	RoleCacheTTL time.Duration
}

// Auth is the assembled auth feature.
type Auth struct {
	AuthHandler *authhandler.AuthHandler
	UserHandler *authhandler.UserHandler
	Seeder      *usecase.Seeder
	Bearer      *jwtmw.Generator
	Profiles    authhandler.ProfileReader
	Roles       authhandler.RoleReader
	AdminRole   entity.RoleName
}

// NewAuth wires repositories, usecases and handlers. rdb may be nil.
func NewAuth(db *gorm.DB, rdb *redis.Client, mailer usecase.Mailer, cfg AuthConfig, logger *slog.Logger) (*Auth, error) {
	roleSet, err := cfg.Auth.Roles()
	if err != nil {
		return nil, err
	}
	store, err := NewMediaStore(cfg.Media)
	if err != nil {
		return nil, err
	}

	// Repository
	bearer := jwtmw.NewGenerator(cfg.JWT)
	deps := usecase.Deps{
		Accounts: authadapters.NewAccountGorm(db),
		Roles:    NewRoleRepository(rdb, db, cfg.RoleCacheTTL),
		Tx:       authadapters.NewGormTxManager(db),
		Hasher:   password.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:   token.NewGenerator(token.DefaultSize),
		Bearer:   bearer,
		Mailer:   mailer,
		Media:    store,
		Logger:   logger,
	}

	// Usecase
	authUC, err := usecase.NewAuthUsecase(deps, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth usecase: %w", err)
	}
	roleUC, err := usecase.NewRoleUsecase(deps, cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("role usecase: %w", err)
	}
	profileUC := usecase.NewProfileUsecase(deps, cfg.Auth)
	seeder, err := usecase.NewSeeder(deps, cfg.Auth, cfg.Admin)
	if err != nil {
		return nil, fmt.Errorf("seeder: %w", err)
	}

	// Handler
	avatars := NewAvatarResolver(cfg.Media, cfg.Auth.DefaultAvatar)
	return &Auth{
		AuthHandler: authhandler.NewAuthHandler(authUC, avatars),
		UserHandler: authhandler.NewUserHandler(profileUC, roleUC, avatars, cfg.Media.UploadDir),
		Seeder:      seeder,
		Bearer:      bearer,
		Profiles:    profileUC,
		Roles:       roleUC,
		AdminRole:   roleSet.Admin,
	}, nil
}
