package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/transport/http/dto"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidCredentials, domain.KindTokenExpired, domain.KindTokenInvalid:
		return http.StatusUnauthorized
	case domain.KindAccountLocked:
		return http.StatusLocked
	case domain.KindAlreadyVerified, domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError はエラーの種別に応じたステータスで応答します。
// INTERNALの原因はログにのみ出力し、レスポンスには含めません。
func writeError(c *gin.Context, op string, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(op+" failed", "kind", kind, "remote_addr", c.ClientIP())
	}
	c.AbortWithStatusJSON(status, dto.ErrorRes{Error: domain.MessageOf(err), Code: string(kind)})
}

// badRequest はバインドエラーに400を返します。
func badRequest(c *gin.Context, op string, err error) {
	slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorRes{Error: err.Error(), Code: string(domain.KindValidation)})
}
