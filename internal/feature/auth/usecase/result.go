package usecase

// WarningCode identifies a non-fatal side-effect failure.
type WarningCode string

const (
	// WarnMailUnavailable means the state change committed but the mail was not sent.
	WarnMailUnavailable WarningCode = "MAIL_UNAVAILABLE"
	// WarnAvatarUploadFailed means the avatar was not stored; other fields were updated.
	WarnAvatarUploadFailed WarningCode = "AVATAR_UPLOAD_FAILED"
)

// Warning qualifies an otherwise successful result.
type Warning struct {
	Code    WarningCode
	Message string
}

// Result is a primary outcome plus the non-fatal warnings collected on the way.
type Result[T any] struct {
	Value    T
	Warnings []Warning
}

// HasWarning reports whether the result carries code.
func (r Result[T]) HasWarning(code WarningCode) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func (r *Result[T]) warn(code WarningCode, msg string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, Message: msg})
}
