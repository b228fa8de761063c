// Package adapters provides the gorm repository implementations for the auth feature.
package adapters

import (
	"time"

	"opinion_backend/internal/feature/auth/domain/entity"
)

// AccountModel is the identity row. Email and username are stored lower-case and
// their unique indexes arbitrate concurrent registrations.
type AccountModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null"`
	Surname      string `gorm:"size:100;not null"`
	Username     string `gorm:"size:100;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile      *ProfileModel           `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Verification *EmailVerificationModel `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Reset        *PasswordResetModel     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Assignment   *AccountRoleModel       `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

func (AccountModel) TableName() string { return "accounts" }

// ProfileModel is 1:1 with AccountModel.
type ProfileModel struct {
	AccountID uint   `gorm:"primaryKey;autoIncrement:false"`
	Phone     string `gorm:"size:32"`
	Avatar    string `gorm:"size:512"`
	UpdatedAt time.Time
}

func (ProfileModel) TableName() string { return "account_profiles" }

// EmailVerificationModel is 1:1 with AccountModel. Token and ExpiresAt are NULL
// once consumed.
type EmailVerificationModel struct {
	AccountID uint       `gorm:"primaryKey;autoIncrement:false"`
	Verified  bool       `gorm:"not null"`
	Token     *string    `gorm:"size:128;index"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (EmailVerificationModel) TableName() string { return "email_verifications" }

// PasswordResetModel is 1:1 with AccountModel.
type PasswordResetModel struct {
	AccountID   uint       `gorm:"primaryKey;autoIncrement:false"`
	Token       *string    `gorm:"size:128;index"`
	ExpiresAt   *time.Time
	LastResetAt *time.Time
	UpdatedAt   time.Time
}

func (PasswordResetModel) TableName() string { return "password_resets" }

// RoleModel is seeded reference data.
type RoleModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:32;not null;uniqueIndex"`
}

func (RoleModel) TableName() string { return "roles" }

// AccountRoleModel assigns a role to an account. The unique index on AccountID
// keeps at most one assignment per account.
type AccountRoleModel struct {
	ID        uint      `gorm:"primaryKey"`
	AccountID uint      `gorm:"not null;uniqueIndex"`
	RoleID    uint      `gorm:"not null;index"`
	Role      RoleModel `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time
}

func (AccountRoleModel) TableName() string { return "account_roles" }

// Models returns every model for AutoMigrate, parents first.
func Models() []any {
	return []any{
		&AccountModel{},
		&ProfileModel{},
		&EmailVerificationModel{},
		&PasswordResetModel{},
		&RoleModel{},
		&AccountRoleModel{},
	}
}

// ToEntity converts the model and any preloaded children into the domain aggregate.
func (m *AccountModel) ToEntity() *entity.Account {
	a := &entity.Account{
		ID:           m.ID,
		Name:         m.Name,
		Surname:      m.Surname,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	a.Profile.AccountID = m.ID
	a.Verification.AccountID = m.ID
	a.Reset.AccountID = m.ID
	if m.Profile != nil {
		a.Profile = m.Profile.ToEntity()
	}
	if m.Verification != nil {
		a.Verification = m.Verification.ToEntity()
	}
	if m.Reset != nil {
		a.Reset = m.Reset.ToEntity()
	}
	if m.Assignment != nil {
		a.Role = entity.RoleName(m.Assignment.Role.Name)
	}
	return a
}

func (m *ProfileModel) ToEntity() entity.Profile {
	return entity.Profile{AccountID: m.AccountID, Phone: m.Phone, Avatar: m.Avatar}
}

func (m *EmailVerificationModel) ToEntity() entity.EmailVerification {
	return entity.EmailVerification{
		AccountID: m.AccountID,
		Verified:  m.Verified,
		Token:     deref(m.Token),
		ExpiresAt: m.ExpiresAt,
	}
}

func (m *PasswordResetModel) ToEntity() entity.PasswordReset {
	return entity.PasswordReset{
		AccountID:   m.AccountID,
		Token:       deref(m.Token),
		ExpiresAt:   m.ExpiresAt,
		LastResetAt: m.LastResetAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullable maps the empty string to NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
