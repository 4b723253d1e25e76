package generic

import (
	"time"
)

// =============================================================================
// MONTH - Offset from the grant date (this IS a month-granular system)
// =============================================================================

// Month is a whole-month offset from the initial grant. Month 0 is the grant
// date itself.
type Month int

const (
	MonthsPerYear = 12

	// HorizonYears is how far the projector looks ahead.
	HorizonYears  = 20
	HorizonMonths = Month(HorizonYears * MonthsPerYear)
)

// Constructors
func MonthsFromYears(years int) Month { return Month(years * MonthsPerYear) }

// Properties
func (m Month) Years() float64  { return float64(m) / MonthsPerYear }
func (m Month) WholeYears() int { return int(m) / MonthsPerYear }

// =============================================================================
// TIME UTILITIES
// =============================================================================

// CurrentYear returns the calendar year used as "now" by the evaluator.
func CurrentYear() int { return time.Now().UTC().Year() }
