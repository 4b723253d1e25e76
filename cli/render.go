// Package cli renders calculator results as bordered terminal tables.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/vesting"
)

var (
	colorBorder = lipgloss.Color("#282726")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#F7931A")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText).Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	gainStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	borderStyle = lipgloss.NewStyle().Foreground(colorBorder)
)

// Table is a bordered text table. A row holding the single cell "---"
// renders as a separator.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable renders t. The first column is left-aligned, the rest are
// right-aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && !isSeparator(row) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(borderStyle.Render(left))
		for i, w := range widths {
			b.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render(mid))
			}
		}
		b.WriteString(borderStyle.Render(right) + "\n")
	}
	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(borderStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == 0 {
				b.WriteString(style.Render(fmt.Sprintf(" %-*s ", widths[i], cell)))
			} else {
				b.WriteString(style.Render(fmt.Sprintf(" %*s ", widths[i], cell)))
			}
			if i < numCols-1 {
				b.WriteString(borderStyle.Render("│"))
			}
		}
		b.WriteString(borderStyle.Render("│") + "\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			rule("├", "┼", "┤")
			continue
		}
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

func isSeparator(row []string) bool { return len(row) == 1 && row[0] == "---" }

// =============================================================================
// FORMATTING
// =============================================================================

// FormatUSD formats a dollar value with thousands separators.
// e.g. 2279.52 -> "$2,279.52"
func FormatUSD(v decimal.Decimal) string {
	f := v.Round(2).InexactFloat64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatBTC formats a BTC amount to satoshi precision.
func FormatBTC(a generic.Amount) string {
	return a.Value.StringFixed(8) + " BTC"
}

// FormatPercent formats a percentage value, e.g. 936.15 -> "936.15%".
func FormatPercent(v decimal.Decimal) string {
	return humanize.CommafWithDigits(v.Round(2).InexactFloat64(), 2) + "%"
}

// FormatPriceStatus renders a price status, highlighting anything not live.
func FormatPriceStatus(s price.Status) string {
	if s == price.StatusLive {
		return gainStyle.Render(string(s))
	}
	return warnStyle.Render(string(s))
}

// =============================================================================
// CALCULATOR VIEWS
// =============================================================================

// ProjectionTable lists a projection at each anniversary.
func ProjectionTable(p vesting.Projection) Table {
	t := Table{
		Title:   "Yearly projection",
		Headers: []string{"Year", "BTC price", "Granted", "Vested", "Value", "Vested value"},
	}
	for _, pt := range p.Timeline.Yearly() {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", pt.Year),
			FormatUSD(pt.BitcoinPrice),
			FormatBTC(pt.CumulativeBitcoin),
			FormatPercent(pt.VestedPercent),
			FormatUSD(pt.CurrentValue.Value),
			FormatUSD(pt.VestedValue.Value),
		})
	}
	return t
}

// ProjectionSummaryTable lists the headline metrics of a projection.
func ProjectionSummaryTable(p vesting.Projection, status price.Status) Table {
	s := p.Summary
	fully := mutedStyle.Render("never")
	if s.FullyVestedMonth != nil {
		fully = fmt.Sprintf("month %d", *s.FullyVestedMonth)
	}
	rows := [][]string{
		{"Starting price", FormatUSD(s.StartingPrice)},
		{"Price status", FormatPriceStatus(status)},
		{"Growth rate", FormatPercent(decimal.NewFromFloat(s.GrowthRatePercent)) + "/yr"},
		{"---"},
		{"Total granted", FormatBTC(s.TotalBitcoin)},
		{"Employer cost", FormatUSD(s.EmployerCost.Value)},
		{"Fully vested", fully},
		{"Value at 10 years", FormatUSD(s.ValueAtTenYears.Value)},
		{"Final value", FormatUSD(s.FinalValue.Value)},
		{"Return multiple", s.ReturnMultiple.StringFixed(2) + "x"},
	}
	for _, w := range s.Warnings {
		rows = append(rows, []string{"Warning", warnStyle.Render(w.Error())})
	}
	return Table{Title: "Summary", Rows: rows}
}

// HistoricalTable lists one row per year of a historical evaluation.
func HistoricalTable(r historical.Result) Table {
	t := Table{
		Title:   "Year by year",
		Headers: []string{"Year", "Grant", "Holdings", "Vested", "Price", "Cost basis", "Value"},
	}
	for _, y := range r.Timeline {
		priceCell := FormatUSD(y.Price)
		if y.UsesCurrentPrice {
			priceCell += "*"
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", y.Year),
			FormatBTC(y.Grant),
			FormatBTC(y.CumulativeBitcoin),
			FormatPercent(y.VestedPercent),
			priceCell,
			FormatUSD(y.CostBasisToDate.Value),
			FormatUSD(y.Value.Value),
		})
	}
	return t
}

// HistoricalSummaryTable lists the totals of a historical evaluation.
func HistoricalSummaryTable(r historical.Result, status price.Status) Table {
	rows := [][]string{
		{"Cost basis method", string(r.Method)},
		{"Current price", FormatUSD(r.CurrentPrice) + " (" + FormatPriceStatus(status) + ")"},
		{"---"},
		{"Total granted", FormatBTC(r.TotalBitcoinGranted)},
		{"Total cost basis", FormatUSD(r.TotalCostBasis.Value)},
		{"Average cost", FormatUSD(r.AverageCostPerBTC) + "/BTC"},
		{"Current value", FormatUSD(r.CurrentValue.Value)},
		{"Vested value", FormatUSD(r.VestedValue.Value)},
		{"Total return", FormatUSD(r.TotalReturn.Value)},
		{"Return", FormatPercent(r.ReturnPercent)},
		{"Annualized", FormatPercent(r.AnnualizedReturn)},
	}
	if r.HasMissingData() {
		years := make([]string, len(r.MissingYears))
		for i, y := range r.MissingYears {
			years[i] = fmt.Sprintf("%d", y)
		}
		rows = append(rows, []string{"Missing prices", warnStyle.Render(strings.Join(years, ", "))})
	}
	return Table{Title: "Summary", Rows: rows}
}
