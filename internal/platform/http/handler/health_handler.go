// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先（DB、Redisなど）の疎通確認を行います。
type Check struct {
	Name string
	// Required が false の依存先は失敗しても degraded として 200 を返します。
	Required bool
	Ping     func(ctx context.Context) error
}

const checkTimeout = 2 * time.Second

// Health は /health エンドポイントのハンドラーを返します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				slog.Warn("health check failed", "check", chk.Name, "error", err, "remote_addr", c.ClientIP())
				results[chk.Name] = "down"
				if chk.Required {
					status, code = "down", http.StatusServiceUnavailable
				} else if status == "ok" {
					status = "degraded"
				}
				continue
			}
			results[chk.Name] = "up"
		}

		if c.Request.Method == http.MethodHead {
			c.Status(code)
			return
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	}
}
