package router

import (
	"github.com/gin-gonic/gin"

	"opinion_backend/internal/feature/auth/domain/entity"
	authhandler "opinion_backend/internal/feature/auth/transport/handler"
	jwtmw "opinion_backend/internal/platform/jwt"
	"opinion_backend/internal/platform/http/handler"
)

// Deps はルーター構築に必要なハンドラーと認証部品です。
type Deps struct {
	Auth     *authhandler.AuthHandler
	Users    *authhandler.UserHandler
	Verifier jwtmw.Verifier
	Profiles authhandler.ProfileReader
	Roles    authhandler.RoleReader
	Admin    entity.RoleName
	Health   []handler.Check
	// MediaDir と MediaURL が設定されていれば保存済み画像を配信します。
	MediaDir string
	MediaURL string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	if d.MediaDir != "" && d.MediaURL != "" {
		r.Static(d.MediaURL, d.MediaDir)
	}

	api := r.Group("/api/v1")

	// 認証不要
	// 導通確認用
	health := handler.Health(d.Health...)
	api.GET("/health", health)
	api.HEAD("/health", health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		// ログイン（JWT 発行）
		auth.POST("/login", d.Auth.Login)
		auth.POST("/verify-email", d.Auth.VerifyEmail)
		auth.POST("/resend-verification", d.Auth.ResendVerification)
		auth.POST("/forgot-password", d.Auth.ForgotPassword)
		auth.POST("/reset-password", d.Auth.ResetPassword)
	}

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になり、無効化されたアカウントは423
	authed := api.Group("/")
	authed.Use(jwtmw.AuthRequired(d.Verifier), authhandler.RequireActiveAccount(d.Profiles))
	{
		authed.GET("/auth/profile", d.Users.Me)
		authed.GET("/users/profile/me", d.Users.Me)
		authed.PUT("/users/profile/me", d.Users.UpdateMe)
		authed.GET("/users/:userId/roles", d.Users.RoleNames)
	}

	// 管理者専用
	admin := authed.Group("/")
	admin.Use(authhandler.RequireAdmin(d.Roles, d.Admin))
	{
		admin.PUT("/users/:userId/role", d.Users.AssignRole)
		admin.PUT("/users/:userId/active", d.Users.SetActive)
		admin.GET("/users/by-role/:roleName", d.Users.AccountsByRole)
		admin.POST("/users/profile", d.Users.ProfileByID)
	}

	return r
}
