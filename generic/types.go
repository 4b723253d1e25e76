/*
Package generic provides the core vesting and valuation engine.

PURPOSE:
  This package contains the domain types and algorithms shared by the
  projector and the historical evaluator. Whether projecting twenty years
  of a new grant or replaying a 2018 grant against real prices, the same
  amounts, schedules and growth curves are used.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (0.02 BTC, 2279.52 USD)
  - Scheme: A named compensation plan (grants + vesting timetable)
  - Plan: A saved calculator state (scheme + customizations + growth)
  - YearlyPrice / PriceQuote: Price reference data

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for every BTC and USD value
  2. Explicit optionals: Optional scheme fields are pointers, never guessed
  3. Type Safety: Strong typing for IDs prevents mixing scheme/plan IDs
  4. Coercion over rejection: Calculator inputs are clamped, not refused

USAGE:
  grant := generic.NewAmount(0.02, generic.UnitBTC)
  value := generic.ValueOf(grant, decimal.NewFromInt(113976))
  // value = 2279.52 USD

SEE ALSO:
  - schedule.go: Vesting milestones and vested-percent lookup
  - grants.go: Grant schedules (initial + annual)
  - growth.go: Projected price curve
*/
package generic

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitBTC Unit = "btc"
	UnitUSD Unit = "usd"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func BTC(value float64) Amount { return NewAmount(value, UnitBTC) }
func USD(value float64) Amount { return NewAmount(value, UnitUSD) }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Float64() float64             { return a.Value.InexactFloat64() }

// NonNegative clamps negative amounts to zero.
func (a Amount) NonNegative() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// ValueOf converts a BTC amount to USD at the given price.
func ValueOf(btc Amount, price decimal.Decimal) Amount {
	return Amount{Value: btc.Value.Mul(price), Unit: UnitUSD}
}

// =============================================================================
// INPUT COERCION - Invalid numbers become safe defaults
// =============================================================================

const (
	MinGrowthRate = 0.0
	MaxGrowthRate = 70.0
)

// ClampGrowthRate bounds an annual growth assumption to [0, 70] percent.
// NaN and infinities become 0.
func ClampGrowthRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return MinGrowthRate
	}
	return math.Max(MinGrowthRate, math.Min(MaxGrowthRate, rate))
}

// SanitizeBTC turns a user-supplied grant size into a non-negative amount.
func SanitizeBTC(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return BTC(0)
	}
	return BTC(v)
}

// SanitizePrice returns price if it is a usable positive number, else fallback.
func SanitizePrice(price, fallback decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return fallback
	}
	return price
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SchemeID string
type PlanID string

// =============================================================================
// SCHEME - Compensation plan reference data
// =============================================================================

// Scheme is immutable reference data describing how BTC is granted and
// unlocked. AnnualGrant and MaxAnnualGrants are optional: a nil AnnualGrant
// means the scheme grants once; a nil MaxAnnualGrants means every anniversary
// inside the horizon receives a grant.
type Scheme struct {
	ID              SchemeID
	Name            string
	Description     string
	Tagline         string
	InitialGrant    Amount
	AnnualGrant     *Amount
	MaxAnnualGrants *int
	Bonuses         []Bonus
	Schedule        VestingSchedule
	Version         int
}

// Bonus is a percentage bonus applied at a vesting milestone.
type Bonus struct {
	Month   Month
	Percent decimal.Decimal
	Label   string
}

// HasAnnualGrant reports whether the scheme adds BTC on anniversaries.
func (s *Scheme) HasAnnualGrant() bool {
	return s.AnnualGrant != nil && s.AnnualGrant.IsPositive()
}

// AnnualGrantCap returns how many annual grants the scheme pays within
// horizonYears.
func (s *Scheme) AnnualGrantCap(horizonYears int) int {
	if !s.HasAnnualGrant() {
		return 0
	}
	if s.MaxAnnualGrants == nil {
		return horizonYears
	}
	if *s.MaxAnnualGrants < horizonYears {
		return max(*s.MaxAnnualGrants, 0)
	}
	return horizonYears
}

// TotalGrant returns everything the scheme pays out over horizonYears.
func (s *Scheme) TotalGrant(horizonYears int) Amount {
	total := s.InitialGrant.NonNegative()
	if n := s.AnnualGrantCap(horizonYears); n > 0 {
		total = total.Add(s.AnnualGrant.Mul(decimal.NewFromInt(int64(n))))
	}
	return total
}

// =============================================================================
// PLAN - Saved calculator state
// =============================================================================

// Plan captures the user-editable inputs of a calculator session.
type Plan struct {
	ID           PlanID
	SchemeID     SchemeID
	Name         string
	CustomEvents []CustomVestingEvent
	GrowthRate   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// =============================================================================
// PRICE DATA
// =============================================================================

// YearlyPrice is one row of the historical BTC/USD reference table.
type YearlyPrice struct {
	Year    int
	High    decimal.Decimal
	Low     decimal.Decimal
	Average decimal.Decimal
	Open    decimal.Decimal
	Close   decimal.Decimal
}

// PriceQuote is a spot BTC/USD price observation.
type PriceQuote struct {
	ID          string
	Price       decimal.Decimal
	Change24h   decimal.Decimal
	LastUpdated time.Time
	Source      string
}

// DefaultBTCPrice is used whenever no live or recorded quote is available.
var DefaultBTCPrice = decimal.NewFromInt(113976)
