package generic

import "github.com/shopspring/decimal"

// =============================================================================
// GRANT SCHEDULE - Interface for how BTC is granted over time
// =============================================================================

// GrantSchedule generates grant events for a month range.
// Implementations define the business logic (initial only, initial + annual,
// capped annual, ...).
type GrantSchedule interface {
	// GenerateGrants returns grant events with From <= At <= To.
	GenerateGrants(from, to Month) []GrantEvent
}

// GrantEvent represents a single grant occurrence.
type GrantEvent struct {
	At     Month
	Amount Amount
	Kind   GrantKind
	Index  int // 0 for the initial grant, n for the nth annual grant
}

type GrantKind string

const (
	GrantInitial GrantKind = "initial"
	GrantAnnual  GrantKind = "annual"
)

// =============================================================================
// SCHEME GRANTS - Initial grant at month 0, annual grants on anniversaries
// =============================================================================

// SchemeGrants implements GrantSchedule for a Scheme.
type SchemeGrants struct {
	Scheme *Scheme
}

func (sg SchemeGrants) GenerateGrants(from, to Month) []GrantEvent {
	if sg.Scheme == nil || to < from {
		return nil
	}

	var events []GrantEvent
	initial := sg.Scheme.InitialGrant.NonNegative()
	if from <= 0 && 0 <= to && initial.IsPositive() {
		events = append(events, GrantEvent{At: 0, Amount: initial, Kind: GrantInitial})
	}

	if !sg.Scheme.HasAnnualGrant() {
		return events
	}

	annual := sg.Scheme.AnnualGrant.NonNegative()
	for n := 1; ; n++ {
		if sg.Scheme.MaxAnnualGrants != nil && n > *sg.Scheme.MaxAnnualGrants {
			break
		}
		at := MonthsFromYears(n)
		if at > to {
			break
		}
		if at >= from {
			events = append(events, GrantEvent{At: at, Amount: annual, Kind: GrantAnnual, Index: n})
		}
	}
	return events
}

// =============================================================================
// BONUSES
// =============================================================================

// BonusThrough returns the total bonus percent earned by month m.
func BonusThrough(bonuses []Bonus, m Month) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bonuses {
		if b.Month <= m {
			total = total.Add(b.Percent)
		}
	}
	return total
}
