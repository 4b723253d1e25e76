/*
growth.go - Projected BTC price curve

PURPOSE:
  Projects the BTC price forward under a constant annual growth assumption:

    price(month) = start × (1 + rate/100)^(month/12)

  The rate is clamped to [0, 70] percent before use. A rate of 0 yields a
  flat curve whose every point is exactly the start price.

PRECISION:
  The fractional exponent is evaluated in float64 and applied to the
  decimal start price as a multiplier, rounded to cents. A zero rate
  short-circuits so the flat line stays exact.
*/
package generic

import (
	"math"

	"github.com/shopspring/decimal"
)

// GrowthCurve projects a price forward in time.
type GrowthCurve struct {
	Start       decimal.Decimal
	RatePercent float64
}

// NewGrowthCurve clamps rate and falls back to DefaultBTCPrice when start is
// not a positive price.
func NewGrowthCurve(start decimal.Decimal, ratePercent float64) GrowthCurve {
	return GrowthCurve{
		Start:       SanitizePrice(start, DefaultBTCPrice),
		RatePercent: ClampGrowthRate(ratePercent),
	}
}

// PriceAt returns the projected price m months after the start.
func (g GrowthCurve) PriceAt(m Month) decimal.Decimal {
	if g.RatePercent == 0 || m == 0 {
		return g.Start
	}
	factor := math.Pow(1+g.RatePercent/100, m.Years())
	return g.Start.Mul(decimal.NewFromFloat(factor)).Round(2)
}
