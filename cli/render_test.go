package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/vesting"
)

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$2,279.52", FormatUSD(decimal.RequireFromString("2279.52")))
	assert.Equal(t, "$1,100.00", FormatUSD(decimal.NewFromInt(1100)))
	assert.Equal(t, "-$5.50", FormatUSD(decimal.RequireFromString("-5.5")))
	assert.Equal(t, "0.02000000 BTC", FormatBTC(generic.BTC(0.02)))
	assert.Equal(t, "936.15%", FormatPercent(decimal.RequireFromString("936.1499")))
}

func TestRenderTable_Layout(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Grants",
		Headers: []string{"Year", "Amount"},
		Rows:    [][]string{{"2020", "0.02"}, {"---"}, {"Total", "0.02"}},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8, out)
	assert.Contains(t, lines[0], "Grants")
	assert.Contains(t, lines[2], "Year")
	assert.Contains(t, lines[7], "╰")
	assert.Empty(t, RenderTable(Table{}))
}

func TestProjectionTables(t *testing.T) {
	scheme := vesting.Accelerator()
	p := vesting.NewCalculator(&scheme, 0, decimal.NewFromInt(100000)).Projection()

	table := ProjectionTable(p)
	require.Len(t, table.Rows, 21)
	assert.Equal(t, "$100,000.00", table.Rows[0][1])
	assert.Equal(t, "100%", table.Rows[10][3])

	summary := RenderTable(ProjectionSummaryTable(p, price.StatusFallback))
	assert.Contains(t, summary, "month 120")
	assert.Contains(t, summary, "fallback")
}

func TestHistoricalTables(t *testing.T) {
	table, err := historical.Bundled()
	require.NoError(t, err)
	scheme := vesting.Accelerator()

	r := historical.Run(historical.Input{
		Scheme:       &scheme,
		StartingYear: 2020,
		Method:       historical.CostBasisAverage,
		Prices:       table,
		CurrentPrice: decimal.NewFromInt(113976),
		AsOfYear:     2025,
	})

	out := RenderTable(HistoricalSummaryTable(r, price.StatusLive))
	assert.Contains(t, out, "$220.00")
	assert.Contains(t, out, "$2,279.52")
	assert.Len(t, HistoricalTable(r).Rows, 6)
}
