package mail

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"opinion_backend/internal/feature/auth/usecase"
	"opinion_backend/internal/shared/ratelimiter"
)

// LogMailer logs instead of sending. Used in development when no provider is set.
// The token itself is not logged.
type LogMailer struct {
	logger *slog.Logger
}

var _ usecase.Mailer = (*LogMailer)(nil)

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, template, to, token string) error {
	m.logger.InfoContext(ctx, "mail not sent, no provider configured", "template", template, "to", to)
	return nil
}

// New returns an HTTPMailer when cfg.APIURL is set and a LogMailer otherwise.
func New(cfg Config, client *http.Client, logger *slog.Logger) usecase.Mailer {
	if cfg.APIURL == "" {
		return NewLogMailer(logger)
	}
	var limiter ratelimiter.Limiter
	if cfg.RateLimit > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	}
	return NewHTTPMailer(cfg, client, limiter)
}
