package vesting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// TIMELINE - Output of a projection
// =============================================================================

// TimelinePoint is one month of a projection. Produced fresh on every
// recalculation; never persisted.
type TimelinePoint struct {
	Month generic.Month
	Year  int // whole years since the initial grant

	// BTC
	CumulativeBitcoin generic.Amount // everything granted so far
	VestedAmount      generic.Amount // belongs to the employee
	EmployerBalance   generic.Amount // granted but still unvested
	VestedPercent     decimal.Decimal
	BonusPercent      decimal.Decimal

	// USD
	BitcoinPrice decimal.Decimal
	CurrentValue generic.Amount // CumulativeBitcoin at BitcoinPrice
	VestedValue  generic.Amount // VestedAmount at BitcoinPrice
}

// Timeline is the ordered projection, month 0 first.
type Timeline []TimelinePoint

// Yearly returns the anniversary points (months 0, 12, 24, ...).
func (t Timeline) Yearly() Timeline {
	var out Timeline
	for _, p := range t {
		if int(p.Month)%generic.MonthsPerYear == 0 {
			out = append(out, p)
		}
	}
	return out
}

// At returns the point for month m.
func (t Timeline) At(m generic.Month) (TimelinePoint, bool) {
	for _, p := range t {
		if p.Month == m {
			return p, true
		}
	}
	return TimelinePoint{}, false
}

// Last returns the final point of the timeline.
func (t Timeline) Last() (TimelinePoint, bool) {
	if len(t) == 0 {
		return TimelinePoint{}, false
	}
	return t[len(t)-1], true
}

// =============================================================================
// SUMMARY - Headline metrics for a projection
// =============================================================================

// Summary condenses a projection into the metric cards shown next to it.
type Summary struct {
	TotalBitcoin        generic.Amount
	EmployerCost        generic.Amount // each grant at the projected price of its month
	FinalPrice          decimal.Decimal
	FinalValue          generic.Amount
	ValueAtTenYears     generic.Amount
	VestedAtTenYears    generic.Amount
	FullyVestedMonth    *generic.Month
	ReturnMultiple      decimal.Decimal // FinalValue / EmployerCost
	Warnings            []generic.ScheduleWarning
	UsedCustomSchedule  bool
	GrowthRatePercent   float64
	StartingPrice       decimal.Decimal
	AnnualGrantsApplied int
}
