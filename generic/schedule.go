/*
schedule.go - Vesting milestones and vested-percent lookup

PURPOSE:
  A vesting schedule answers one question: "at month N, what percentage of
  the granted BTC belongs to the employee?" Schedules are step functions
  defined by milestones; the active percent is the one attached to the
  highest milestone at or before the month.

KEY CONCEPTS:
  - Milestone: {month offset, cumulative percent vested, label}
  - VestingSchedule: Ordered milestones (scheme default)
  - CustomVestingEvent: User override; when any exist they REPLACE the
    scheme's default schedule entirely

EXAMPLE:
  schedule := VestingSchedule{
      {Month: 0, Percent: pct(0)},
      {Month: 60, Percent: pct(50)},
      {Month: 120, Percent: pct(100)},
  }
  schedule.PercentAt(59)  // 0
  schedule.PercentAt(60)  // 50
  schedule.PercentAt(200) // 100

SHAPE CHECKS:
  Custom events are not required to be monotone or to end at 100. The
  projector uses them exactly as given; ValidateSchedule reports the
  problems so a caller can warn the user.
*/
package generic

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// =============================================================================
// MILESTONES
// =============================================================================

// Milestone is one step of a vesting schedule.
type Milestone struct {
	Month   Month
	Percent decimal.Decimal // cumulative, 0-100
	Label   string
}

// VestingSchedule is a step function of cumulative vested percent.
type VestingSchedule []Milestone

// CustomVestingEvent is a user-specified milestone override.
type CustomVestingEvent struct {
	ID               string
	TimePeriod       Month
	PercentageVested decimal.Decimal
	Label            string
}

// FromCustomEvents builds a schedule from user overrides, sorted by month.
func FromCustomEvents(events []CustomVestingEvent) VestingSchedule {
	schedule := make(VestingSchedule, 0, len(events))
	for _, e := range events {
		schedule = append(schedule, Milestone{Month: e.TimePeriod, Percent: e.PercentageVested, Label: e.Label})
	}
	return schedule.Sorted()
}

// Sorted returns a copy ordered by month. Ties keep their input order.
func (s VestingSchedule) Sorted() VestingSchedule {
	out := make(VestingSchedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// PercentAt returns the cumulative vested percent at month m. The schedule
// must be sorted. Before the first milestone nothing is vested.
func (s VestingSchedule) PercentAt(m Month) decimal.Decimal {
	percent := decimal.Zero
	for _, ms := range s {
		if ms.Month > m {
			break
		}
		percent = ms.Percent
	}
	return percent
}

// FractionAt returns PercentAt(m) / 100.
func (s VestingSchedule) FractionAt(m Month) decimal.Decimal {
	return s.PercentAt(m).Div(hundred)
}

// VestedFractionAt is FractionAt clamped to [0, 1], the share of the
// balance that has vested at month m.
func (s VestingSchedule) VestedFractionAt(m Month) decimal.Decimal {
	f := s.FractionAt(m)
	if f.IsNegative() {
		return decimal.Zero
	}
	if f.GreaterThan(one) {
		return one
	}
	return f
}

// FinalMonth returns the month of the last milestone, or 0 when empty.
func (s VestingSchedule) FinalMonth() Month {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Month
}

// FullyVestedAt returns the first month at which 100% is reached.
func (s VestingSchedule) FullyVestedAt() (Month, bool) {
	for _, ms := range s {
		if ms.Percent.GreaterThanOrEqual(hundred) {
			return ms.Month, true
		}
	}
	return 0, false
}

// ActiveSchedule picks the custom events when present, else the default.
func ActiveSchedule(scheme *Scheme, custom []CustomVestingEvent) VestingSchedule {
	if len(custom) > 0 {
		return FromCustomEvents(custom)
	}
	if scheme == nil {
		return nil
	}
	return scheme.Schedule.Sorted()
}

// =============================================================================
// VALIDATION - Reports, never rejects
// =============================================================================

// ValidateSchedule checks a schedule for monotone percentages, an explicit
// 100% terminal milestone, duplicate months and out-of-range values.
func ValidateSchedule(s VestingSchedule) []ScheduleWarning {
	var warnings []ScheduleWarning
	sorted := s.Sorted()

	for i, ms := range sorted {
		if ms.Percent.IsNegative() || ms.Percent.GreaterThan(hundred) {
			warnings = append(warnings, ScheduleWarning{
				Code:    "out_of_range",
				Month:   ms.Month,
				Message: fmt.Sprintf("percent %s outside [0, 100]", ms.Percent),
			})
		}
		if ms.Month < 0 || ms.Month > HorizonMonths {
			warnings = append(warnings, ScheduleWarning{
				Code:    "out_of_range",
				Month:   ms.Month,
				Message: fmt.Sprintf("month outside [0, %d]", HorizonMonths),
			})
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.Month == ms.Month {
			warnings = append(warnings, ScheduleWarning{
				Code:    "duplicate_month",
				Month:   ms.Month,
				Message: "more than one milestone in the same month",
			})
		}
		if ms.Percent.LessThan(prev.Percent) {
			warnings = append(warnings, ScheduleWarning{
				Code:    "decreasing",
				Month:   ms.Month,
				Message: fmt.Sprintf("percent drops from %s to %s", prev.Percent, ms.Percent),
			})
		}
	}

	if len(sorted) == 0 || !sorted[len(sorted)-1].Percent.Equal(hundred) {
		warnings = append(warnings, ScheduleWarning{
			Code:    "incomplete",
			Month:   sorted.FinalMonth(),
			Message: "schedule does not end at 100%",
		})
	}
	return warnings
}
