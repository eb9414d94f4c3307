package apperror

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code     int    // HTTP Status Code (e.g., 400, 404)
	Message  string // User-facing error message
	Conflict bool   // Marks capacity conflicts so clients can branch without string-matching
	Err      error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewConflict creates an AppError carrying the machine-readable conflict flag.
func NewConflict(code int, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Conflict: true,
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
