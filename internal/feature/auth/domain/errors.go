// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Kind classifies a failed operation. Transport layers map kinds to status codes;
// the set is closed.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindAccountLocked      Kind = "ACCOUNT_LOCKED"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindTokenInvalid       Kind = "TOKEN_INVALID"
	KindAlreadyVerified    Kind = "ALREADY_VERIFIED"
	KindValidation         Kind = "VALIDATION"
	KindInternal           Kind = "INTERNAL"
)

// Error is the single typed failure returned by auth operations.
// Message is safe to show to callers; the wrapped cause is kept for logging only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Internal wraps an infrastructure failure. The store or driver message never
// becomes part of Message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// Validation creates a VALIDATION error with the given message.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// KindOf returns the kind of err. Errors that are not *Error are INTERNAL.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Sentinel errors for authentication and account operations.
var (
	// ErrAccountNotFound indicates that no account matched the lookup.
	ErrAccountNotFound = New(KindNotFound, "account not found")

	// ErrRoleNotFound indicates that the role row has not been seeded.
	ErrRoleNotFound = New(KindNotFound, "role not found")

	// ErrDuplicateAccount is returned when the store rejects a write on the
	// email or username unique constraint.
	ErrDuplicateAccount = New(KindConflict, "email or username already in use")

	// ErrEmailTaken indicates that another account already uses the email.
	ErrEmailTaken = New(KindConflict, "email is already registered")

	// ErrUsernameTaken indicates that another account already uses the username.
	ErrUsernameTaken = New(KindConflict, "username is already in use")

	// ErrInvalidCredentials is returned for an unknown identifier and for a wrong
	// password alike.
	ErrInvalidCredentials = New(KindInvalidCredentials, "invalid credentials")

	// ErrAccountLocked is returned when a deactivated account tries to authenticate.
	ErrAccountLocked = New(KindAccountLocked, "account is deactivated, contact an administrator")

	// ErrTokenNotFound is returned when no stored verification or reset token matches.
	ErrTokenNotFound = New(KindNotFound, "token not found")

	// ErrTokenExpired is returned when a stored token matched but is past its expiry.
	ErrTokenExpired = New(KindTokenExpired, "token has expired")

	// ErrTokenInvalid is returned for empty or malformed tokens.
	ErrTokenInvalid = New(KindTokenInvalid, "token is invalid")

	// ErrAlreadyVerified is returned when the email has already been verified.
	ErrAlreadyVerified = New(KindAlreadyVerified, "email has already been verified")

	// ErrCurrentPasswordRequired is returned when a password change omits the current password.
	ErrCurrentPasswordRequired = Validation("current password is required to change the password")

	// ErrCurrentPasswordIncorrect is returned when the current password does not verify.
	ErrCurrentPasswordIncorrect = Validation("current password is incorrect")

	// ErrNothingToUpdate is returned when a profile update changes no field.
	ErrNothingToUpdate = Validation("nothing to update")

	// ErrRoleNotAllowed is returned for role names outside the allowed set.
	ErrRoleNotAllowed = Validation("role not allowed")
)
