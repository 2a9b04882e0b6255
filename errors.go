package folio

import (
	"errors"
	"fmt"
)

// ErrValidation marks requests rejected before any state mutation.
var ErrValidation = errors.New("validation failed")

// ErrInvalidAllocation is returned when a multi-holder allocation cannot be
// computed, typically because the total share count is zero.
var ErrInvalidAllocation = fmt.Errorf("%w: invalid allocation", ErrValidation)

// ErrRecompute marks a failed full-history rewrite. Callers must treat the
// affected (ticker,person) scope as inconsistent until a rewrite succeeds;
// the store performs the rewrite transactionally so a failure leaves the
// previous rows in place.
var ErrRecompute = errors.New("recompute failed")

// validationf wraps a human-readable reason with ErrValidation.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
