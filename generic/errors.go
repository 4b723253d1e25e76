/*
errors.go - Centralized error types for the vesting engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Scheme/plan not found
  2. Validation errors - Malformed scheme definitions or request fields
  3. Price errors - Upstream price data unavailable

NOTE:
  The calculators themselves never return errors. Bad numeric input is
  clamped (see ClampGrowthRate, SanitizeBTC). Errors only surface at the
  storage, parsing and network boundaries.

SEE ALSO:
  - factory/scheme.go: Returns ErrInvalidScheme
  - price/tracker.go: Returns ErrPriceUnavailable
  - api/handlers.go: Maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSchemeNotFound is returned when a referenced scheme doesn't exist.
	ErrSchemeNotFound = errors.New("scheme not found")

	// ErrPlanNotFound is returned when a saved plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrInvalidScheme is returned when a scheme definition cannot be used.
	ErrInvalidScheme = errors.New("invalid scheme")

	// ErrInvalidCostBasisMethod is returned for anything but high/low/average.
	ErrInvalidCostBasisMethod = errors.New("invalid cost basis method")

	// ErrInvalidYear is returned when a price row has an unusable year.
	ErrInvalidYear = errors.New("invalid year")

	// ErrPriceUnavailable is returned when no upstream quote could be fetched.
	ErrPriceUnavailable = errors.New("price unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SchemeError explains why a scheme definition was rejected.
type SchemeError struct {
	SchemeID SchemeID
	Field    string
	Message  string
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("scheme %q: %s: %s", e.SchemeID, e.Field, e.Message)
}

func (e *SchemeError) Unwrap() error {
	return ErrInvalidScheme
}

// ScheduleWarning reports a custom vesting schedule that does not satisfy
// the expected shape. Warnings never block a projection.
type ScheduleWarning struct {
	Code    string // "decreasing", "incomplete", "duplicate_month", "out_of_range"
	Month   Month
	Message string
}

func (w ScheduleWarning) Error() string {
	return fmt.Sprintf("%s at month %d: %s", w.Code, w.Month, w.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidScheme) ||
		errors.Is(err, ErrInvalidCostBasisMethod) ||
		errors.Is(err, ErrInvalidYear)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSchemeNotFound) ||
		errors.Is(err, ErrPlanNotFound)
}
