package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"opinion_backend/internal/feature/auth/usecase"
	"opinion_backend/internal/shared/ratelimiter"
)

// sendRequest is the provider payload.
type sendRequest struct {
	Template  string            `json:"template"`
	To        string            `json:"to"`
	From      string            `json:"from"`
	Variables map[string]string `json:"variables"`
}

// HTTPMailer posts templated mail to a provider API.
type HTTPMailer struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// HTTPMailerがMailerを実装していることをコンパイル時に検証します。
var _ usecase.Mailer = (*HTTPMailer)(nil)

// NewHTTPMailer creates a mailer. limiter may be nil.
func NewHTTPMailer(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *HTTPMailer {
	return &HTTPMailer{cfg: cfg, client: client, limiter: limiter}
}

// Send delivers template to the recipient with the token and its action link.
func (m *HTTPMailer) Send(ctx context.Context, template, to, token string) error {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("mail rate limit: %w", err)
		}
	}

	body, err := json.Marshal(sendRequest{
		Template: template,
		To:       to,
		From:     m.cfg.From,
		Variables: map[string]string{
			"token": token,
			"link":  Link(m.cfg.LinkBaseURL, template, token),
		},
	})
	if err != nil {
		return err
	}

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	// リクエストを実行
	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("mail provider http %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// Link builds the frontend URL that consumes token for template.
func Link(base, template, token string) string {
	return strings.TrimRight(base, "/") + "/" + template + "?token=" + url.QueryEscape(token)
}
