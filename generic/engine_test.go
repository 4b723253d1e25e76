package generic

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func standard() VestingSchedule {
	return VestingSchedule{
		{Month: 0, Percent: pct(0)},
		{Month: 60, Percent: pct(50)},
		{Month: 120, Percent: pct(100)},
	}
}

// =============================================================================
// SCHEDULE
// =============================================================================

func TestVestingSchedule_PercentAt(t *testing.T) {
	s := standard()

	cases := []struct {
		month Month
		want  int64
	}{
		{0, 0}, {59, 0}, {60, 50}, {119, 50}, {120, 100}, {240, 100},
	}
	for _, c := range cases {
		assert.True(t, pct(c.want).Equal(s.PercentAt(c.month)), "month %d", c.month)
	}
}

func TestVestingSchedule_BeforeFirstMilestoneIsZero(t *testing.T) {
	s := VestingSchedule{{Month: 12, Percent: pct(25)}}
	assert.True(t, s.PercentAt(11).IsZero())
	assert.True(t, s.FractionAt(12).Equal(decimal.RequireFromString("0.25")))
}

func TestVestingSchedule_VestedFractionAtIsClamped(t *testing.T) {
	s := VestingSchedule{
		{Month: 0, Percent: pct(-10)},
		{Month: 12, Percent: pct(40)},
		{Month: 24, Percent: pct(150)},
	}

	assert.True(t, s.VestedFractionAt(0).IsZero())
	assert.True(t, s.VestedFractionAt(12).Equal(decimal.RequireFromString("0.4")))
	assert.True(t, s.VestedFractionAt(24).Equal(decimal.NewFromInt(1)))
	assert.True(t, s.PercentAt(24).Equal(pct(150)), "the raw percent is not clamped")
}

func TestActiveSchedule_CustomEventsWin(t *testing.T) {
	scheme := &Scheme{Schedule: standard()}
	custom := []CustomVestingEvent{
		{TimePeriod: 24, PercentageVested: pct(100)},
		{TimePeriod: 0, PercentageVested: pct(10)},
	}

	active := ActiveSchedule(scheme, custom)
	require.Len(t, active, 2)
	assert.Equal(t, Month(0), active[0].Month, "custom events are sorted by month")
	assert.True(t, active.PercentAt(30).Equal(pct(100)))

	assert.Len(t, ActiveSchedule(scheme, nil), 3)
	assert.Nil(t, ActiveSchedule(nil, nil))
}

func TestValidateSchedule(t *testing.T) {
	assert.Empty(t, ValidateSchedule(standard()))

	warnings := ValidateSchedule(VestingSchedule{
		{Month: 0, Percent: pct(40)},
		{Month: 12, Percent: pct(20)},
		{Month: 12, Percent: pct(30)},
		{Month: 300, Percent: pct(120)},
	})

	codes := map[string]int{}
	for _, w := range warnings {
		codes[w.Code]++
	}
	assert.Equal(t, 1, codes["decreasing"])
	assert.Equal(t, 1, codes["duplicate_month"])
	assert.Equal(t, 2, codes["out_of_range"])
	assert.Equal(t, 1, codes["incomplete"])

	assert.Len(t, ValidateSchedule(nil), 1)
}

// =============================================================================
// GRANTS
// =============================================================================

func TestSchemeGrants_InitialAndCappedAnnual(t *testing.T) {
	annual := BTC(0.001)
	maxGrants := 3
	scheme := &Scheme{InitialGrant: BTC(0.01), AnnualGrant: &annual, MaxAnnualGrants: &maxGrants}

	events := SchemeGrants{Scheme: scheme}.GenerateGrants(0, HorizonMonths)
	require.Len(t, events, 4)
	assert.Equal(t, GrantInitial, events[0].Kind)
	assert.Equal(t, Month(36), events[3].At)
	assert.Equal(t, 3, events[3].Index)

	assert.Equal(t, 3, scheme.AnnualGrantCap(HorizonYears))
	assert.Equal(t, 2, scheme.AnnualGrantCap(2))
	assert.True(t, scheme.TotalGrant(HorizonYears).Value.Equal(decimal.RequireFromString("0.013")))
}

func TestSchemeGrants_Window(t *testing.T) {
	annual := BTC(1)
	scheme := &Scheme{InitialGrant: BTC(1), AnnualGrant: &annual}

	events := SchemeGrants{Scheme: scheme}.GenerateGrants(13, 36)
	require.Len(t, events, 2)
	assert.Equal(t, Month(24), events[0].At)
	assert.Nil(t, SchemeGrants{}.GenerateGrants(0, 10))
}

func TestBonusThrough(t *testing.T) {
	bonuses := []Bonus{{Month: 60, Percent: pct(5)}, {Month: 120, Percent: pct(10)}}
	assert.True(t, BonusThrough(bonuses, 59).IsZero())
	assert.True(t, BonusThrough(bonuses, 120).Equal(pct(15)))
}

// =============================================================================
// GROWTH + COERCION
// =============================================================================

func TestGrowthCurve(t *testing.T) {
	flat := NewGrowthCurve(decimal.NewFromInt(50000), 0)
	assert.True(t, flat.PriceAt(137).Equal(decimal.NewFromInt(50000)))

	doubling := NewGrowthCurve(decimal.NewFromInt(50000), 100)
	assert.Equal(t, MaxGrowthRate, doubling.RatePercent)

	g := NewGrowthCurve(decimal.NewFromInt(1000), 50)
	assert.True(t, g.PriceAt(12).Equal(decimal.NewFromInt(1500)))

	fallback := NewGrowthCurve(decimal.Zero, 10)
	assert.True(t, fallback.Start.Equal(DefaultBTCPrice))
}

func TestClampGrowthRate(t *testing.T) {
	assert.Equal(t, 0.0, ClampGrowthRate(math.NaN()))
	assert.Equal(t, 0.0, ClampGrowthRate(math.Inf(1)))
	assert.Equal(t, 0.0, ClampGrowthRate(-3))
	assert.Equal(t, 70.0, ClampGrowthRate(71))
	assert.Equal(t, 15.5, ClampGrowthRate(15.5))
}

func TestSanitizeBTC(t *testing.T) {
	assert.True(t, SanitizeBTC(-0.5).IsZero())
	assert.True(t, SanitizeBTC(math.NaN()).IsZero())
	assert.True(t, SanitizeBTC(0.25).Value.Equal(decimal.RequireFromString("0.25")))
}
