/*
Package historical replays vesting schemes against real BTC prices.

PURPOSE:
  Answers "what if we had started this plan in 2018?" Grants are valued at
  the price statistic of the year they were made (the cost basis) and the
  accumulated BTC is marked to each year's price, then to today's spot
  price for the final year.

COST BASIS METHODS:
  high:    the year's highest price (most conservative return)
  low:     the year's lowest price (most generous return)
  average: the year's average price (default)

ALGORITHM:
  For each year from StartingYear to AsOfYear:
  1. Grant due: initial grant in the starting year, annual grant on each
     following year while fewer than MaxAnnualGrants have been paid
  2. Cost basis += grant × chosen price field
  3. Cumulative BTC += grant
  4. Value = cumulative × chosen price (spot price for the as-of year)

MISSING DATA:
  A year with no table row contributes nothing to the cost basis and is
  valued at zero. Such years are listed in Result.MissingYears and the
  grant entry carries PriceAvailable=false so callers can flag the gap.
  The as-of year is the exception: a year still in progress has no
  statistics yet, so its grant is priced at spot (PriceSource "spot").

EXAMPLE:
  scheme := vesting.Accelerator() // 0.02 BTC, no annual grants
  r := historical.Evaluate(&scheme, 2020, historical.CostBasisAverage,
      historical.MustBundled(), decimal.NewFromInt(113976))
  // r.TotalCostBasis = 220 (0.02 × 11,000)
  // r.CurrentValue   = 2279.52

SEE ALSO:
  - table.go: Bundled yearly price dataset
  - generic/grants.go: Grant schedule shared with the projector
*/
package historical

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// COST BASIS METHOD
// =============================================================================

type CostBasisMethod string

const (
	CostBasisHigh    CostBasisMethod = "high"
	CostBasisLow     CostBasisMethod = "low"
	CostBasisAverage CostBasisMethod = "average"
)

// ParseCostBasisMethod is strict: anything but high/low/average is an error.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch CostBasisMethod(strings.ToLower(strings.TrimSpace(s))) {
	case CostBasisHigh:
		return CostBasisHigh, nil
	case CostBasisLow:
		return CostBasisLow, nil
	case CostBasisAverage, "":
		return CostBasisAverage, nil
	default:
		return "", generic.ErrInvalidCostBasisMethod
	}
}

// Pick returns the price field selected by the method. Unknown methods use
// the average.
func (m CostBasisMethod) Pick(p generic.YearlyPrice) decimal.Decimal {
	switch m {
	case CostBasisHigh:
		return p.High
	case CostBasisLow:
		return p.Low
	default:
		return p.Average
	}
}

// =============================================================================
// INPUT / RESULT
// =============================================================================

// Input contains everything an evaluation depends on.
type Input struct {
	Scheme       *generic.Scheme
	StartingYear int
	Method       CostBasisMethod
	Prices       Table
	CurrentPrice decimal.Decimal

	// AsOfYear defaults to the current calendar year.
	AsOfYear int
}

// Grant is one line of the grant breakdown.
type Grant struct {
	Year           int
	Kind           generic.GrantKind
	Amount         generic.Amount
	Price          decimal.Decimal
	CostBasis      generic.Amount
	PriceAvailable bool
	PriceSource    string // "table", "spot" or "missing"
}

// YearPoint is one year of the historical timeline.
type YearPoint struct {
	Year              int
	Grant             generic.Amount
	CumulativeBitcoin generic.Amount
	VestedPercent     decimal.Decimal
	VestedAmount      generic.Amount
	Price             decimal.Decimal
	CostBasisToDate   generic.Amount
	Value             generic.Amount
	UsesCurrentPrice  bool
}

// Result is the outcome of replaying a scheme.
type Result struct {
	SchemeID     generic.SchemeID
	StartingYear int
	AsOfYear     int
	Method       CostBasisMethod
	CurrentPrice decimal.Decimal

	Timeline            []YearPoint
	GrantBreakdown      []Grant
	TotalBitcoinGranted generic.Amount
	TotalCostBasis      generic.Amount
	CurrentValue        generic.Amount
	VestedValue         generic.Amount
	TotalReturn         generic.Amount
	ReturnPercent       decimal.Decimal
	AnnualizedReturn    decimal.Decimal
	AverageCostPerBTC   decimal.Decimal
	MissingYears        []int
}

// HasMissingData reports whether any year lacked a price row.
func (r Result) HasMissingData() bool { return len(r.MissingYears) > 0 }

// =============================================================================
// EVALUATION
// =============================================================================

// Evaluate is the plain evaluation contract, as of the current year.
func Evaluate(scheme *generic.Scheme, startingYear int, method CostBasisMethod, prices Table, currentPrice decimal.Decimal) Result {
	return Run(Input{
		Scheme:       scheme,
		StartingYear: startingYear,
		Method:       method,
		Prices:       prices,
		CurrentPrice: currentPrice,
	})
}

// Run replays the scheme year by year.
func Run(in Input) Result {
	asOf := in.AsOfYear
	if asOf <= 0 {
		asOf = generic.CurrentYear()
	}
	method := in.Method
	if method != CostBasisHigh && method != CostBasisLow {
		method = CostBasisAverage
	}
	spot := generic.SanitizePrice(in.CurrentPrice, generic.DefaultBTCPrice)

	start := in.StartingYear

	result := Result{
		StartingYear:        start,
		AsOfYear:            asOf,
		Method:              method,
		CurrentPrice:        spot,
		TotalBitcoinGranted: generic.BTC(0),
		TotalCostBasis:      generic.USD(0),
		CurrentValue:        generic.USD(0),
		VestedValue:         generic.USD(0),
		TotalReturn:         generic.USD(0),
		ReturnPercent:       decimal.Zero,
		AnnualizedReturn:    decimal.Zero,
		AverageCostPerBTC:   decimal.Zero,
	}
	if in.Scheme == nil || start > asOf {
		return result
	}
	result.SchemeID = in.Scheme.ID

	grants := generic.SchemeGrants{Scheme: in.Scheme}
	schedule := in.Scheme.Schedule.Sorted()
	cumulative := generic.BTC(0)
	costBasis := generic.USD(0)
	var vestedPercent, vestedFraction decimal.Decimal

	for year := start; year <= asOf; year++ {
		offset := generic.MonthsFromYears(year - start)
		row, hasRow := in.Prices[year]
		isAsOf := year == asOf

		price := decimal.Zero
		source := "missing"
		switch {
		case hasRow:
			price = method.Pick(row)
			source = "table"
		case isAsOf:
			price = spot
			source = "spot"
		default:
			result.MissingYears = append(result.MissingYears, year)
		}

		granted := generic.BTC(0)
		for _, g := range grants.GenerateGrants(offset, offset) {
			basis := generic.ValueOf(g.Amount, price)
			result.GrantBreakdown = append(result.GrantBreakdown, Grant{
				Year:           year,
				Kind:           g.Kind,
				Amount:         g.Amount,
				Price:          price,
				CostBasis:      basis,
				PriceAvailable: source != "missing",
				PriceSource:    source,
			})
			granted = granted.Add(g.Amount)
			costBasis = costBasis.Add(basis)
		}
		cumulative = cumulative.Add(granted)

		valuePrice := price
		if isAsOf {
			valuePrice = spot
		}
		vestedPercent = schedule.PercentAt(offset)
		vestedFraction = schedule.VestedFractionAt(offset)
		vested := cumulative.Mul(vestedFraction)

		result.Timeline = append(result.Timeline, YearPoint{
			Year:              year,
			Grant:             granted,
			CumulativeBitcoin: cumulative,
			VestedPercent:     vestedPercent,
			VestedAmount:      vested,
			Price:             valuePrice,
			CostBasisToDate:   costBasis,
			Value:             generic.ValueOf(cumulative, valuePrice),
			UsesCurrentPrice:  isAsOf,
		})
	}

	result.TotalBitcoinGranted = cumulative
	result.TotalCostBasis = costBasis
	result.CurrentValue = generic.ValueOf(cumulative, spot)
	result.VestedValue = generic.ValueOf(cumulative.Mul(vestedFraction), spot)
	result.TotalReturn = result.CurrentValue.Sub(costBasis)

	if costBasis.IsPositive() {
		result.ReturnPercent = result.TotalReturn.Value.Div(costBasis.Value).Mul(decimal.NewFromInt(100)).Round(2)
		if years := asOf - start; years > 0 {
			multiple := result.CurrentValue.Value.Div(costBasis.Value).InexactFloat64()
			cagr := (math.Pow(multiple, 1/float64(years)) - 1) * 100
			result.AnnualizedReturn = decimal.NewFromFloat(cagr).Round(2)
		}
	}
	if cumulative.IsPositive() {
		result.AverageCostPerBTC = costBasis.Value.Div(cumulative.Value).Round(2)
	}
	return result
}
