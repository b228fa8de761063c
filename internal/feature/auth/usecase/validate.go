package usecase

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"

	"opinion_backend/internal/feature/auth/domain"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8
	// maxPasswordLength is the bcrypt input limit.
	maxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
	Phone    string
	// Avatar is an already stored media reference, empty for the default avatar.
	Avatar string
}

// Validate re-checks the domain rules even though the transport validated shape.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Surname, validation.Length(0, 100)),
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255), is.EmailFormat),
		validation.Field(&in.Password, passwordRules...),
		validation.Field(&in.Phone, validation.Length(0, 32)),
	)
}

var passwordRules = []validation.Rule{
	validation.Required,
	validation.Length(minPasswordLength, maxPasswordLength),
}

func validateEmail(email string) error {
	return validation.Validate(email, validation.Required, is.EmailFormat)
}

func validatePassword(password string) error {
	return validation.Validate(password, passwordRules...)
}

func validateUsername(username string) error {
	return validation.Validate(username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern))
}

// invalid converts an ozzo validation failure into a VALIDATION error. Internal
// rule errors are not caller mistakes and become INTERNAL.
func invalid(field string, err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return domain.Internal(err)
	}
	msg := err.Error()
	if field != "" {
		msg = field + ": " + msg
	}
	return domain.Validation(msg)
}

// normalizePhone returns the E.164 form of phone when it parses as a valid number
// for region, and the trimmed input otherwise.
func normalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
