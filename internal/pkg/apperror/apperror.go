package apperror

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int               // HTTP Status Code (e.g., 400, 404)
	Message string            // User-facing error message
	Fields  map[string]string // Per-field validation messages, if any
	Err     error             // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code and message.
// It lets sentinel errors match copies that carry field details.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithFields returns a copy of base carrying per-field messages.
func WithFields(base *AppError, fields map[string]string) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: base.Message,
		Fields:  fields,
		Err:     base.Err,
	}
}
