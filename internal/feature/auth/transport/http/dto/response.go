package dto

import (
	"time"

	"opinion_backend/internal/feature/auth/usecase"
)

// ErrorRes is the body of every failed request.
type ErrorRes struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageRes is a body without payload.
type MessageRes struct {
	Message string `json:"message"`
}

// WarningRes reports a side effect that did not complete.
type WarningRes struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AccountRes is the public representation of an account.
type AccountRes struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Avatar    string    `json:"profilePicture"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterRes is returned with 201 by /auth/register.
type RegisterRes struct {
	Message               string       `json:"message"`
	Account               AccountRes   `json:"user"`
	VerificationExpiresAt time.Time    `json:"verificationExpiresAt"`
	Warnings              []WarningRes `json:"warnings,omitempty"`
}

// LoginRes carries the bearer token.
type LoginRes struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Account   AccountRes `json:"user"`
}

// ResendRes is returned by resend-verification.
type ResendRes struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProfileRes wraps an account view with the warnings of the operation.
type ProfileRes struct {
	Account  AccountRes   `json:"user"`
	Warnings []WarningRes `json:"warnings,omitempty"`
}

// RolesRes lists the role names of an account.
type RolesRes struct {
	UserID uint     `json:"userId"`
	Roles  []string `json:"roles"`
}

// AccountListRes lists accounts holding a role.
type AccountListRes struct {
	Role  string       `json:"role"`
	Total int          `json:"total"`
	Users []AccountRes `json:"users"`
}

// AvatarResolver maps a stored avatar reference to its public URL.
type AvatarResolver func(ref string) string

// Account converts a usecase view. A nil resolver keeps the reference as is.
func (r AvatarResolver) Account(v usecase.AccountView) AccountRes {
	res := NewAccountRes(v)
	if r != nil {
		res.Avatar = r(res.Avatar)
	}
	return res
}

// Accounts converts a list of views.
func (r AvatarResolver) Accounts(vs []usecase.AccountView) []AccountRes {
	out := make([]AccountRes, 0, len(vs))
	for _, v := range vs {
		out = append(out, r.Account(v))
	}
	return out
}

// NewAccountRes converts a usecase view.
func NewAccountRes(v usecase.AccountView) AccountRes {
	return AccountRes{
		ID:        v.ID,
		Name:      v.Name,
		Surname:   v.Surname,
		Username:  v.Username,
		Email:     v.Email,
		Phone:     v.Phone,
		Avatar:    v.Avatar,
		Role:      string(v.Role),
		Active:    v.Active,
		State:     string(v.State),
		CreatedAt: v.CreatedAt,
	}
}

// NewWarnings converts usecase warnings; nil when there are none.
func NewWarnings(ws []usecase.Warning) []WarningRes {
	if len(ws) == 0 {
		return nil
	}
	out := make([]WarningRes, 0, len(ws))
	for _, w := range ws {
		out = append(out, WarningRes{Code: string(w.Code), Message: w.Message})
	}
	return out
}
