package historical

import (
	_ "embed"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// PRICE TABLE - Static yearly BTC/USD reference data
// =============================================================================

//go:embed prices.json
var bundledPrices []byte

// Table maps a calendar year to its price statistics.
type Table map[int]generic.YearlyPrice

type yearlyPriceJSON struct {
	Year    int             `json:"year"`
	High    decimal.Decimal `json:"high"`
	Low     decimal.Decimal `json:"low"`
	Average decimal.Decimal `json:"average"`
	Open    decimal.Decimal `json:"open"`
	Close   decimal.Decimal `json:"close"`
}

// Bundled decodes the dataset compiled into the binary.
func Bundled() (Table, error) {
	return ParseTable(bundledPrices)
}

// MustBundled is Bundled for package-level initialisation and tests.
func MustBundled() Table {
	t, err := Bundled()
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTable decodes a JSON array of yearly prices.
func ParseTable(data []byte) (Table, error) {
	var rows []yearlyPriceJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse price table: %w", err)
	}

	t := make(Table, len(rows))
	for _, r := range rows {
		if r.Year <= 0 {
			return nil, fmt.Errorf("price table row %d: %w", r.Year, generic.ErrInvalidYear)
		}
		t[r.Year] = generic.YearlyPrice{
			Year: r.Year, High: r.High, Low: r.Low, Average: r.Average, Open: r.Open, Close: r.Close,
		}
	}
	return t, nil
}

// Years returns the covered years in ascending order.
func (t Table) Years() []int {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Range returns the first and last covered year.
func (t Table) Range() (first, last int, ok bool) {
	years := t.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	return years[0], years[len(years)-1], true
}

// Rows returns the table ordered by year.
func (t Table) Rows() []generic.YearlyPrice {
	rows := make([]generic.YearlyPrice, 0, len(t))
	for _, y := range t.Years() {
		rows = append(rows, t[y])
	}
	return rows
}
