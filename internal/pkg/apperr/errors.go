// internal/pkg/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the domain services. Handlers translate these
// into HTTP status codes; services wrap them with context via fmt.Errorf("%w").
var (
	// ErrNotFound is returned when a referenced product, cart, order or
	// user does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnavailable is returned when a product exists but has been
	// deactivated and can no longer be purchased.
	ErrUnavailable = errors.New("product is unavailable")

	// ErrInsufficientStock is returned when a requested quantity exceeds
	// the product's available stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateRating is returned when a user rates the same product twice.
	ErrDuplicateRating = errors.New("product already rated by this user")

	// ErrEmptyCart is returned when checkout is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrForbidden is returned when a user acts on a resource they do not own.
	ErrForbidden = errors.New("not authorized")
)

// ValidationError reports a missing or malformed input field, or an invalid
// state transition. Field names the offending input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a named field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
