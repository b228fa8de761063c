// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"opinion_backend/internal/feature/auth/transport/http/dto"
	"opinion_backend/internal/feature/auth/usecase"
	"opinion_backend/internal/platform/media"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (usecase.Result[usecase.RegisterOutput], error)
	Login(ctx context.Context, identifier, password string) (usecase.LoginOutput, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) (usecase.Result[usecase.ResendOutput], error)
	ForgotPassword(ctx context.Context, email string) (usecase.Result[usecase.ForgotOutput], error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// forgotMessage is returned for every forgot-password request.
const forgotMessage = "if the email is registered, a password reset link has been sent"

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	avatars dto.AvatarResolver
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, avatars dto.AvatarResolver) *AuthHandler {
	return &AuthHandler{auth: auth, avatars: avatars}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 成功時は201、メール送信失敗時もwarnings付きで201を返却
// - メール・ユーザー名重複時は409を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "register", err)
		return
	}
	if media.IsLocalPath(req.ProfilePicture) {
		badRequest(c, "register", errors.New("profilePicture must be a hosted URL"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Avatar:   req.ProfilePicture,
	})
	if err != nil {
		writeError(c, "register", err)
		return
	}
	slog.Info("user registered", "account_id", res.Value.Account.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.RegisterRes{
		Message:               "registered, check your email to verify the account",
		Account:               h.avatars.Account(res.Value.Account),
		VerificationExpiresAt: res.Value.VerificationExpiresAt,
		Warnings:              dto.NewWarnings(res.Warnings),
	})
}

// Login はメールアドレスまたはユーザー名でログインします。
// 未知の識別子とパスワード誤りはどちらも401で区別しません。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "login", err)
		return
	}
	out, err := h.auth.Login(c.Request.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		writeError(c, "login", err)
		return
	}
	slog.Info("user login successful", "account_id", out.Account.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		Token:     out.Token,
		ExpiresAt: out.ExpiresAt,
		Account:   h.avatars.Account(out.Account),
	})
}

// VerifyEmail はメール確認トークンを消費します。
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "verify_email", err)
		return
	}
	if err := h.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		writeError(c, "verify_email", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "email verified"})
}

// ResendVerification は新しい確認トークンを発行して再送します。
// トークンは保存済みでもメールが送れなかった場合は503を返します。
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.EmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "resend_verification", err)
		return
	}
	res, err := h.auth.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, "resend_verification", err)
		return
	}
	if res.HasWarning(usecase.WarnMailUnavailable) {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorRes{
			Error: "verification email could not be sent, try again later",
			Code:  string(usecase.WarnMailUnavailable),
		})
		return
	}
	c.JSON(http.StatusOK, dto.ResendRes{Message: "verification email sent", ExpiresAt: res.Value.ExpiresAt})
}

// ForgotPassword は登録有無に関わらず同じ200レスポンスを返します。
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.EmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "forgot_password", err)
		return
	}
	res, err := h.auth.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		slog.Error("forgot password failed", "error", err, "remote_addr", c.ClientIP())
	} else if !res.Value.Initiated {
		slog.Warn("reset mail not delivered", "remote_addr", c.ClientIP())
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: forgotMessage})
}

// ResetPassword はリセットトークンで新しいパスワードを設定します。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "reset_password", err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		writeError(c, "reset_password", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageRes{Message: "password updated"})
}
