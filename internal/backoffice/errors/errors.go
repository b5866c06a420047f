package errors

import (
	"fmt"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrDuplicateKey    = fmt.Errorf("duplicate key")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidCSRF     = fmt.Errorf("invalid csrf token")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrUpdateFailed    = fmt.Errorf("update failed")
)

// ValidationError is an ErrInvalidInput whose message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (v *ValidationError) Error() string {
	return v.Message
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
