package usecase

import (
	"time"

	"opinion_backend/internal/feature/auth/domain/entity"
)

// AccountView is the caller-facing summary of an account. It never carries the
// password hash or any pending token.
type AccountView struct {
	ID        uint
	Name      string
	Surname   string
	Username  string
	Email     string
	Phone     string
	Avatar    string
	Role      entity.RoleName
	Active    bool
	State     entity.State
	CreatedAt time.Time
}

func newAccountView(a *entity.Account, defaultAvatar string) AccountView {
	avatar := a.Profile.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Surname:   a.Surname,
		Username:  a.Username,
		Email:     a.Email,
		Phone:     a.Profile.Phone,
		Avatar:    avatar,
		Role:      a.Role,
		Active:    a.Active,
		State:     a.State(),
		CreatedAt: a.CreatedAt,
	}
}
