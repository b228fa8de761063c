package handler

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"opinion_backend/internal/feature/auth/domain"
	"opinion_backend/internal/feature/auth/domain/entity"
	"opinion_backend/internal/feature/auth/transport/http/dto"
	"opinion_backend/internal/feature/auth/usecase"
	jwtmw "opinion_backend/internal/platform/jwt"
)

// ProfileReader loads the current state of an account.
type ProfileReader interface {
	GetProfile(ctx context.Context, accountID uint) (usecase.AccountView, error)
}

// RoleReader returns the roles currently assigned to an account.
type RoleReader interface {
	RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error)
}

// RequireActiveAccount rejects tokens of deactivated or deleted accounts.
// jwtmw.AuthRequired must run first.
func RequireActiveAccount(profiles ProfileReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := jwtmw.AccountIDFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
			return
		}
		view, err := profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "invalid token"})
				return
			}
			writeError(c, "active_check", err)
			return
		}
		if !view.Active {
			writeError(c, "active_check", domain.ErrAccountLocked)
			return
		}
		c.Next()
	}
}

// RequireAdmin checks the stored role, not the role claim, so a demoted
// administrator loses access before the token expires.
func RequireAdmin(roles RoleReader, admin entity.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := jwtmw.AccountIDFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
			return
		}
		names, err := roles.RoleNames(c.Request.Context(), id)
		if err != nil {
			writeError(c, "admin_check", err)
			return
		}
		if !slices.Contains(names, admin) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorRes{Error: "forbidden"})
			return
		}
		c.Next()
	}
}
