package di

import (
	"log/slog"

	"opinion_backend/internal/feature/auth/transport/http/dto"
	"opinion_backend/internal/feature/auth/usecase"
	infrahttp "opinion_backend/internal/platform/http"
	"opinion_backend/internal/platform/mail"
	"opinion_backend/internal/platform/media"
)

// NewMailer creates a fully configured Mailer with HTTP client.
func NewMailer(cfg mail.Config, logger *slog.Logger) usecase.Mailer {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return mail.New(cfg, httpClient, logger)
}

// NewMediaStore creates the local media store.
func NewMediaStore(cfg media.Config) (usecase.MediaStore, error) {
	return media.NewLocalStore(cfg)
}

// NewAvatarResolver resolves stored avatar references under the media base URL.
func NewAvatarResolver(cfg media.Config, defaultAvatar string) dto.AvatarResolver {
	return func(ref string) string {
		return media.NormalizeReference(ref, cfg.BaseURL, defaultAvatar)
	}
}
