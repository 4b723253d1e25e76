/*
projector.go - Month-by-month vesting projection

PURPOSE:
  Answers "what will this grant be worth, and how much of it is mine?"
  for every month of a twenty-year horizon.

ALGORITHM:
  For each month 0..240:
  1. Balance: initial grant at month 0, annual grant at each 12-month
     boundary (capped by the scheme's MaxAnnualGrants)
  2. Vested fraction: percent of the highest milestone <= month, from the
     custom events when present, else the scheme default
  3. Price: current × (1 + growth/100)^(month/12)
  4. Values: balance × price, vested × price

INPUT COERCION:
  Nothing is rejected. Growth is clamped to [0, 70], negative grants to
  zero, a missing price to the default. A nil scheme yields an empty
  timeline.

CUSTOM SCHEDULES:
  Used exactly as supplied. A percent above 100 or below 0 is clamped when
  applied to the balance (vested can never exceed what was granted) but
  reported unclamped in VestedPercent. ValidateSchedule warnings are
  attached to the summary.

EXAMPLE:
  scheme := vesting.Accelerator()
  timeline := vesting.Project(&scheme, nil, 15, decimal.NewFromInt(113976))
  p, _ := timeline.At(120)
  // p.VestedAmount = 0.02 BTC, p.BitcoinPrice ≈ 461,100

SEE ALSO:
  - generic/schedule.go: PercentAt
  - generic/grants.go: SchemeGrants
  - generic/growth.go: GrowthCurve
*/
package vesting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// PROJECTION INPUT
// =============================================================================

// Input contains everything a projection depends on.
type Input struct {
	Scheme            *generic.Scheme
	CustomEvents      []generic.CustomVestingEvent
	GrowthRatePercent float64
	CurrentPrice      decimal.Decimal

	// Horizon defaults to generic.HorizonMonths.
	Horizon generic.Month
}

// Projection is a timeline with its headline metrics.
type Projection struct {
	Timeline Timeline
	Summary  Summary
}

// Project is the plain projection contract: scheme, overrides, growth
// assumption and spot price in, one point per month out.
func Project(scheme *generic.Scheme, custom []generic.CustomVestingEvent, growthRatePercent float64, currentPrice decimal.Decimal) Timeline {
	return Run(Input{
		Scheme:            scheme,
		CustomEvents:      custom,
		GrowthRatePercent: growthRatePercent,
		CurrentPrice:      currentPrice,
	}).Timeline
}

// Run computes the timeline and its summary.
func Run(in Input) Projection {
	if in.Scheme == nil {
		return Projection{}
	}

	horizon := in.Horizon
	if horizon <= 0 || horizon > generic.HorizonMonths {
		horizon = generic.HorizonMonths
	}

	curve := generic.NewGrowthCurve(in.CurrentPrice, in.GrowthRatePercent)
	schedule := generic.ActiveSchedule(in.Scheme, in.CustomEvents)
	grants := generic.SchemeGrants{Scheme: in.Scheme}.GenerateGrants(0, horizon)

	timeline := make(Timeline, 0, int(horizon)+1)
	balance := generic.BTC(0)
	employerCost := generic.USD(0)
	next := 0

	for m := generic.Month(0); m <= horizon; m++ {
		price := curve.PriceAt(m)

		for next < len(grants) && grants[next].At <= m {
			balance = balance.Add(grants[next].Amount)
			employerCost = employerCost.Add(generic.ValueOf(grants[next].Amount, price))
			next++
		}

		percent := schedule.PercentAt(m)
		vested := balance.Mul(schedule.VestedFractionAt(m))

		timeline = append(timeline, TimelinePoint{
			Month:             m,
			Year:              m.WholeYears(),
			CumulativeBitcoin: balance,
			VestedAmount:      vested,
			EmployerBalance:   balance.Sub(vested),
			VestedPercent:     percent,
			BonusPercent:      generic.BonusThrough(in.Scheme.Bonuses, m),
			BitcoinPrice:      price,
			CurrentValue:      generic.ValueOf(balance, price),
			VestedValue:       generic.ValueOf(vested, price),
		})
	}

	return Projection{
		Timeline: timeline,
		Summary:  summarize(in, timeline, schedule, grants, employerCost, curve),
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

func summarize(in Input, t Timeline, schedule generic.VestingSchedule, grants []generic.GrantEvent, employerCost generic.Amount, curve generic.GrowthCurve) Summary {
	s := Summary{
		EmployerCost:       employerCost,
		UsedCustomSchedule: len(in.CustomEvents) > 0,
		GrowthRatePercent:  curve.RatePercent,
		StartingPrice:      curve.Start,
		ReturnMultiple:     decimal.Zero,
	}

	for _, g := range grants {
		if g.Kind == generic.GrantAnnual {
			s.AnnualGrantsApplied++
		}
	}

	if last, ok := t.Last(); ok {
		s.TotalBitcoin = last.CumulativeBitcoin
		s.FinalPrice = last.BitcoinPrice
		s.FinalValue = last.CurrentValue
	}
	if p, ok := t.At(generic.MonthsFromYears(10)); ok {
		s.ValueAtTenYears = p.CurrentValue
		s.VestedAtTenYears = p.VestedAmount
	}
	if m, ok := schedule.FullyVestedAt(); ok {
		s.FullyVestedMonth = &m
	}
	if employerCost.IsPositive() {
		s.ReturnMultiple = s.FinalValue.Value.Div(employerCost.Value).Round(4)
	}
	if s.UsedCustomSchedule {
		s.Warnings = generic.ValidateSchedule(schedule)
	}
	return s
}
