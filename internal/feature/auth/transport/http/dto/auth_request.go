// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// RegisterReq は/auth/registerエンドポイントのリクエストボディを表します。
// 形の検証のみ行い、ドメインルールはusecaseで再検証します。
type RegisterReq struct {
	Name     string `json:"name" binding:"required,max=100"`
	Surname  string `json:"surname" binding:"max=100"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"max=32"`
	// ProfilePicture は既にホストされている画像のURLです（任意）。
	ProfilePicture string `json:"profilePicture" binding:"max=512"`
}

// LoginReq はメールアドレスまたはユーザー名でのログインを表します。
type LoginReq struct {
	EmailOrUsername string `json:"emailOrUsername" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// TokenReq carries an opaque verification token.
type TokenReq struct {
	Token string `json:"token" binding:"required"`
}

// EmailReq is the body of resend-verification and forgot-password.
type EmailReq struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordReq completes a password reset.
type ResetPasswordReq struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}
