package service

import (
	"errors"
	"fmt"
)

// ErrValidation is returned for business-rule violations orthogonal to
// status, e.g. a non-positive delivery quantity or quantities exceeding
// the quoted line item.
var ErrValidation = errors.New("validation failed")

// validationf wraps ErrValidation with a formatted detail message
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
