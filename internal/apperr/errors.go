package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers translate these into
// HTTP status codes; everything else surfaces as a generic 500.
var (
	// ErrNotFound means an id resolved to zero rows where one was expected.
	ErrNotFound = errors.New("not found")

	// ErrNotEnrolled means an attendance mark was attempted for a student
	// that does not belong to the given class.
	ErrNotEnrolled = errors.New("student not enrolled in class")

	// ErrScopeViolation means a caller asked for data outside their
	// role/stream scope. Rejected outright rather than filtered to empty so
	// "no data" and "not allowed" stay distinguishable.
	ErrScopeViolation = errors.New("outside caller scope")
)

// ValidationError reports a rejected input with a caller-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
