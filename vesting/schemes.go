/*
schemes.go - Reference vesting schemes

PURPOSE:
  The three plans an employer can pick from. They differ in how much BTC
  is front-loaded and how long annual grants continue; all three share the
  same unlock timetable (50% at five years, 100% at ten).

SCHEMES:
  accelerator  ("Pioneer")  0.02 BTC up front, no annual grants
  steady-builder ("Stacker") 0.015 BTC up front + 0.001 BTC/yr for 5 years
  slow-burn    ("Builder")  0.002 BTC up front + 0.002 BTC/yr for 10 years

These structs are the only definition. api.Seed converts them with
factory.ToJSON and validates them through factory.FromJSON, the same path
operator-defined schemes take.

SEE ALSO:
  - factory/scheme.go: JSON <-> Scheme conversion
  - api/seed.go: Seeds these into the store
*/
package vesting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

const (
	SchemeAccelerator   generic.SchemeID = "accelerator"
	SchemeSteadyBuilder generic.SchemeID = "steady-builder"
	SchemeSlowBurn      generic.SchemeID = "slow-burn"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func intPtr(v int) *int { return &v }

func amountPtr(a generic.Amount) *generic.Amount { return &a }

// StandardSchedule is 0% at grant, 50% at five years, 100% at ten years.
func StandardSchedule() generic.VestingSchedule {
	return generic.VestingSchedule{
		{Month: 0, Percent: pct(0), Label: "Grant date"},
		{Month: 60, Percent: pct(50), Label: "5-year cliff"},
		{Month: 120, Percent: pct(100), Label: "Fully vested"},
	}
}

// Accelerator front-loads the whole grant.
func Accelerator() generic.Scheme {
	return generic.Scheme{
		ID:           SchemeAccelerator,
		Name:         "Pioneer",
		Tagline:      "Jump-start your team's Bitcoin journey",
		Description:  "A single upfront grant that maximizes exposure to early price appreciation.",
		InitialGrant: generic.BTC(0.02),
		Schedule:     StandardSchedule(),
		Version:      1,
	}
}

// SteadyBuilder splits the grant between an upfront amount and five annual grants.
func SteadyBuilder() generic.Scheme {
	return generic.Scheme{
		ID:              SchemeSteadyBuilder,
		Name:            "Stacker",
		Tagline:         "Balance upfront and ongoing rewards",
		Description:     "An upfront grant plus five annual top-ups that reward staying.",
		InitialGrant:    generic.BTC(0.015),
		AnnualGrant:     amountPtr(generic.BTC(0.001)),
		MaxAnnualGrants: intPtr(5),
		Schedule:        StandardSchedule(),
		Version:         1,
	}
}

// SlowBurn spreads most of the grant over ten annual grants.
func SlowBurn() generic.Scheme {
	return generic.Scheme{
		ID:              SchemeSlowBurn,
		Name:            "Builder",
		Tagline:         "Dollar-cost average into long-term loyalty",
		Description:     "A small upfront grant followed by ten equal annual grants.",
		InitialGrant:    generic.BTC(0.002),
		AnnualGrant:     amountPtr(generic.BTC(0.002)),
		MaxAnnualGrants: intPtr(10),
		Schedule:        StandardSchedule(),
		Version:         1,
	}
}

// DefaultSchemes returns the reference schemes in display order.
func DefaultSchemes() []generic.Scheme {
	return []generic.Scheme{Accelerator(), SteadyBuilder(), SlowBurn()}
}
