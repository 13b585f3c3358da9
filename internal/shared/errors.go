package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAdmin is returned when a valid account lacks the admin role.
	ErrNotAdmin = errors.New("account is not an administrator")
	// ErrDuplicate indicates a unique key (email, label, code) is taken.
	ErrDuplicate = errors.New("already exists")
	// ErrValidation marks user input rejected by validation rules.
	ErrValidation = errors.New("validation failed")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage converts an error into text that can be shown to operators.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return verrs.Error()
	case errors.Is(err, ErrNotFound):
		return "Không tìm thấy dữ liệu"
	case errors.Is(err, ErrDuplicate):
		return "Dữ liệu đã tồn tại"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotAdmin):
		return "Email hoặc mật khẩu không hợp lệ"
	default:
		return "Đã xảy ra lỗi, vui lòng thử lại"
	}
}
