package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/store/sqlite"
	"github.com/warp/vesting-engine/vesting"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSchemes_SaveGetListAndVersion(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, scheme := range vesting.DefaultSchemes() {
		require.NoError(t, s.SaveScheme(ctx, scheme))
	}

	got, err := s.GetScheme(ctx, vesting.SchemeSteadyBuilder)
	require.NoError(t, err)
	assert.Equal(t, "Stacker", got.Name)
	assert.Equal(t, 1, got.Version)
	require.NotNil(t, got.MaxAnnualGrants)
	assert.Equal(t, 5, *got.MaxAnnualGrants)
	assert.True(t, got.InitialGrant.Value.Equal(decimal.RequireFromString("0.015")))

	// Saving again bumps the version.
	got.Name = "Stacker v2"
	require.NoError(t, s.SaveScheme(ctx, *got))
	again, err := s.GetScheme(ctx, vesting.SchemeSteadyBuilder)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)
	assert.Equal(t, "Stacker v2", again.Name)

	all, err := s.ListSchemes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, vesting.SchemeAccelerator, all[0].ID)

	_, err = s.GetScheme(ctx, "nope")
	assert.ErrorIs(t, err, generic.ErrSchemeNotFound)
}

func TestPlans_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created := time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)
	plan := generic.Plan{
		ID:         "plan-1",
		SchemeID:   vesting.SchemeAccelerator,
		Name:       "Team plan",
		GrowthRate: 15,
		CustomEvents: []generic.CustomVestingEvent{
			{ID: "e1", TimePeriod: 0, PercentageVested: decimal.NewFromInt(25)},
			{ID: "e2", TimePeriod: 36, PercentageVested: decimal.NewFromInt(100)},
		},
		CreatedAt: created,
	}
	require.NoError(t, s.SavePlan(ctx, plan))

	got, err := s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, got.GrowthRate)
	require.Len(t, got.CustomEvents, 2)
	assert.Equal(t, generic.Month(36), got.CustomEvents[1].TimePeriod)
	assert.True(t, got.CreatedAt.Equal(created))

	// Update keeps created_at.
	plan.GrowthRate = 30
	plan.CustomEvents = nil
	plan.CreatedAt = time.Time{}
	require.NoError(t, s.SavePlan(ctx, plan))
	got, err = s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.GrowthRate)
	assert.Empty(t, got.CustomEvents)
	assert.True(t, got.CreatedAt.Equal(created))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	require.NoError(t, s.DeletePlan(ctx, "plan-1"))
	assert.ErrorIs(t, s.DeletePlan(ctx, "plan-1"), generic.ErrPlanNotFound)
	_, err = s.GetPlan(ctx, "plan-1")
	assert.ErrorIs(t, err, generic.ErrPlanNotFound)
}

func TestYearlyPrices_UpsertIsExact(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	row := generic.YearlyPrice{
		Year:    2020,
		High:    decimal.RequireFromString("29300.00"),
		Low:     decimal.RequireFromString("4106.98"),
		Average: decimal.RequireFromString("11000"),
		Open:    decimal.RequireFromString("7193.60"),
		Close:   decimal.RequireFromString("29001.72"),
	}
	require.NoError(t, s.SaveYearlyPrice(ctx, row))

	row.Average = decimal.RequireFromString("11111.11")
	require.NoError(t, s.SaveYearlyPrice(ctx, row))

	prices, err := s.YearlyPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, prices[2020].Average.Equal(decimal.RequireFromString("11111.11")))
	assert.True(t, prices[2020].Low.Equal(decimal.RequireFromString("4106.98")))

	assert.ErrorIs(t, s.SaveYearlyPrice(ctx, generic.YearlyPrice{Year: 0}), generic.ErrInvalidYear)
}

func TestQuotes_LatestByLastUpdated(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	latest, err := s.LatestQuote(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendQuote(ctx, generic.PriceQuote{ID: "new", Price: decimal.NewFromInt(110000), LastUpdated: base.Add(time.Hour), Source: "test"}))
	require.NoError(t, s.AppendQuote(ctx, generic.PriceQuote{ID: "old", Price: decimal.NewFromInt(100000), LastUpdated: base, Source: "test"}))

	latest, err = s.LatestQuote(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "new", latest.ID)
	assert.True(t, latest.Price.Equal(decimal.NewFromInt(110000)))
	assert.True(t, latest.LastUpdated.Equal(base.Add(time.Hour)))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.SaveScheme(ctx, vesting.Accelerator()))
	require.NoError(t, s.AppendQuote(ctx, generic.PriceQuote{Price: decimal.NewFromInt(1)}))
	require.NoError(t, s.Reset(ctx))

	schemes, err := s.ListSchemes(ctx)
	require.NoError(t, err)
	assert.Empty(t, schemes)
	q, err := s.LatestQuote(ctx)
	require.NoError(t, err)
	assert.Nil(t, q)
}
