package domain

import "errors"

// Domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalError  = errors.New("internal error")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")

	ErrCategoryNotFound         = errors.New("category not found")
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrSavedCalculationNotFound = errors.New("saved calculation not found")
	ErrResetTokenInvalid        = errors.New("reset token invalid or expired")
	ErrInvalidCategory          = errors.New("category does not belong to user")
	ErrStorageNotConfigured     = errors.New("export storage not configured")

	// Calculator failures. Always recoverable by re-prompting the user.
	ErrInvalidParameters      = errors.New("invalid calculation parameters")
	ErrUnknownCalculationType = errors.New("unknown calculation type")
	ErrMalformedDateInput     = errors.New("malformed date input")
)

// Validation constants
const (
	MinCategoryNameLength  = 2
	MaxCategoryNameLength  = 100
	MinUserNameLength      = 2
	MinPasswordLength      = 6
	MinResetPasswordLength = 8
	MaxDescriptionLength   = 200
	MaxTagLength           = 30
	MaxCalculationTitle    = 80
)

// FieldError is a validation failure attributed to a single request field.
// Message is user facing.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// NewFieldError creates a FieldError
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// CalculationError carries a calculator failure together with the message
// shown to the user. Err is one of ErrInvalidParameters,
// ErrUnknownCalculationType or ErrMalformedDateInput.
type CalculationError struct {
	Err     error
	Message string
}

func (e *CalculationError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

// InvalidParameters builds a CalculationError wrapping ErrInvalidParameters
func InvalidParameters(message string) *CalculationError {
	return &CalculationError{Err: ErrInvalidParameters, Message: message}
}
