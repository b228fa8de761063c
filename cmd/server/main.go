package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"opinion_backend/internal/app/di"
	"opinion_backend/internal/app/router"
	authadapters "opinion_backend/internal/feature/auth/adapters"
	authusecase "opinion_backend/internal/feature/auth/usecase"
	infradb "opinion_backend/internal/platform/db"
	"opinion_backend/internal/platform/http/handler"
	jwtmw "opinion_backend/internal/platform/jwt"
	"opinion_backend/internal/platform/mail"
	"opinion_backend/internal/platform/media"
	infraredis "opinion_backend/internal/platform/redis"
)

// serverConfig はHTTPサーバーとログの設定です。
type serverConfig struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	var srv serverConfig
	if err := env.Parse(&srv); err != nil {
		return fmt.Errorf("parse server env: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(srv.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	dbCfg, err := infradb.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	db, err := infradb.Open(dbCfg, authadapters.Models()...)
	if err != nil {
		return err
	}
	defer func() {
		if err := infradb.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Redis
	redisCfg, err := infraredis.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	var rdb *redisv9.Client
	if redisCfg.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rdb, err = infraredis.NewRedisClient(pingCtx, redisCfg)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	cfg, err := loadAuthConfig(redisCfg)
	if err != nil {
		return err
	}
	// JWT_SECRETチェック
	if cfg.JWT.Secret == "" {
		return errors.New(jwtmw.EnvKeyJWTSecret + " is not set")
	}
	mailCfg, err := mail.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	if mailCfg.APIURL == "" {
		slog.Warn("MAIL_API_URL is not set. Mail is logged, not sent.")
	}

	auth, err := di.NewAuth(db, rdb, di.NewMailer(mailCfg, logger), cfg, logger)
	if err != nil {
		return err
	}

	// ロールと管理者を毎回起動時に保証する
	seed, err := auth.Seeder.Run(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	slog.Info("administrator ready", "account_id", seed.AccountID, "email", seed.Email, "created", seed.Created)

	checks := []handler.Check{{
		Name:     "db",
		Required: true,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, handler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	// ルータ生成
	engine := router.NewRouter(router.Deps{
		Auth:     auth.AuthHandler,
		Users:    auth.UserHandler,
		Verifier: auth.Bearer,
		Profiles: auth.Profiles,
		Roles:    auth.Roles,
		Admin:    auth.AdminRole,
		Health:   checks,
		MediaDir: cfg.Media.Dir,
		MediaURL: cfg.Media.BaseURL,
	})

	httpServer := &http.Server{
		Addr:              ":" + srv.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadAuthConfig(redisCfg infraredis.Config) (di.AuthConfig, error) {
	authCfg, err := authusecase.LoadConfigFromEnv()
	if err != nil {
		return di.AuthConfig{}, err
	}
	adminCfg, err := authusecase.LoadAdminConfigFromEnv()
	if err != nil {
		return di.AuthConfig{}, err
	}
	jwtCfg, err := jwtmw.LoadConfigFromEnv()
	if err != nil {
		return di.AuthConfig{}, err
	}
	mediaCfg, err := media.LoadConfigFromEnv()
	if err != nil {
		return di.AuthConfig{}, err
	}
	return di.AuthConfig{
		Auth:         authCfg,
		Admin:        adminCfg,
		JWT:          jwtCfg,
		Media:        mediaCfg,
		RoleCacheTTL: redisCfg.CacheTTL,
	}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
