/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Scheme listing, lookup and validation
- Projection and historical endpoints
- Price status surfacing
- Plan CRUD and plan projection
- Reset and re-seed
*/
package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/store/sqlite"
	"github.com/warp/vesting-engine/vesting"
)

type testServer struct {
	store  *sqlite.Store
	router http.Handler
}

func newTestServer(t *testing.T, source price.Source) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, Seed(context.Background(), store))

	var tracker *price.Tracker
	if source != nil {
		tracker = price.NewTracker(source, price.WithStore(store))
	}
	h := NewHandler(store, tracker)
	return &testServer{store: store, router: NewRouter(h, nil)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func ptr[T any](v T) *T { return &v }

func fixedSource(p int64) price.Source {
	return price.SourceFunc(func(context.Context) (generic.PriceQuote, error) {
		return generic.PriceQuote{Price: decimal.NewFromInt(p), LastUpdated: time.Now(), Source: "test"}, nil
	})
}

// =============================================================================
// SCHEMES
// =============================================================================

func TestSchemes_ListAndGet(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/schemes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	schemes := decode[[]SchemeDTO](t, rec)
	require.Len(t, schemes, 3)
	assert.Equal(t, "accelerator", schemes[0].ID)
	assert.False(t, schemes[0].HasAnnualGrant)

	rec = s.do(t, http.MethodGet, "/api/schemes/slow-burn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slow := decode[SchemeDTO](t, rec)
	assert.Equal(t, "Builder", slow.Name)
	assert.InDelta(t, 0.022, slow.TotalGrantBTC, 1e-12)

	rec = s.do(t, http.MethodGet, "/api/schemes/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemes_CreateValidates(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/schemes", map[string]any{
		"id": "bad", "name": "Bad", "initial_grant": 0.01,
		"vesting_schedule": []map[string]any{{"month": 0, "percent": 50}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/schemes", map[string]any{
		"id": "quick", "name": "Quick", "initial_grant": 0.01,
		"vesting_schedule": []map[string]any{{"month": 0, "percent": 0}, {"month": 24, "percent": 100}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[SchemeDTO](t, rec)
	assert.Equal(t, 1, created.Version)
}

// =============================================================================
// PROJECTION
// =============================================================================

func TestProject_UsesOverridePrice(t *testing.T) {
	// GIVEN: accelerator at a flat price of 100,000
	// WHEN: Projecting with the yearly view
	// THEN: 21 points and the 10-year point is fully vested at 2,000 USD

	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/projections", ProjectionRequest{
		SchemeID:     "accelerator",
		GrowthRate:   ptr(0.0),
		CurrentPrice: ptr(100000.0),
		View:         "yearly",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[ProjectionDTO](t, rec)
	require.Len(t, p.Timeline, 21)
	assert.Equal(t, price.StatusLive, p.PriceStatus)
	assert.InDelta(t, 100.0, p.Timeline[10].VestedPercent, 1e-9)
	assert.InDelta(t, 2000.0, p.Timeline[10].VestedValue, 1e-6)
	assert.InDelta(t, 0.02, p.Summary.TotalBitcoin, 1e-12)
}

func TestProject_FallbackPriceWithoutTracker(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/projections", ProjectionRequest{SchemeID: "steady-builder"})
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[ProjectionDTO](t, rec)
	assert.Equal(t, price.StatusFallback, p.PriceStatus)
	assert.Len(t, p.Timeline, 241)
	assert.InDelta(t, 113976.0, p.Summary.StartingPrice, 1e-9)
}

func TestProject_CustomEventsProduceWarnings(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/projections", map[string]any{
		"scheme_id": "accelerator",
		"custom_events": []map[string]any{
			{"time_period": 0, "percentage_vested": 50},
			{"time_period": 12, "percentage_vested": 30},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[ProjectionDTO](t, rec)
	assert.True(t, p.Summary.UsedCustomSchedule)
	assert.NotEmpty(t, p.Summary.Warnings)
}

func TestCalculator_QueryGrowth(t *testing.T) {
	s := newTestServer(t, fixedSource(100000))
	_, err := newTrackerRefresh(s)
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/calculator/accelerator?growth=10&view=yearly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[ProjectionDTO](t, rec)
	assert.InDelta(t, 10.0, p.Summary.GrowthRate, 1e-9)

	rec = s.do(t, http.MethodGet, "/api/calculator/accelerator?growth=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/calculator/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// newTrackerRefresh triggers one refresh through the API.
func newTrackerRefresh(s *testServer) (PriceDTO, error) {
	req := httptest.NewRequest(http.MethodPost, "/api/price/refresh", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	var dto PriceDTO
	err := json.Unmarshal(rec.Body.Bytes(), &dto)
	return dto, err
}

// =============================================================================
// HISTORICAL
// =============================================================================

func TestHistorical_Accelerator2020(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/historical", HistoricalRequest{
		SchemeID:        "accelerator",
		StartingYear:    2020,
		CostBasisMethod: "average",
		CurrentPrice:    ptr(113976.0),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	r := decode[HistoricalDTO](t, rec)
	assert.InDelta(t, 220.0, r.TotalCostBasis, 1e-9)
	assert.InDelta(t, 2279.52, r.CurrentValue, 1e-9)
	assert.InDelta(t, 0.02, r.TotalBitcoinGranted, 1e-12)
	require.NotEmpty(t, r.GrantBreakdown)
	assert.Equal(t, 2020, r.GrantBreakdown[0].Year)
}

func TestHistorical_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/historical", HistoricalRequest{SchemeID: "accelerator", StartingYear: 2020, CostBasisMethod: "median"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/historical", HistoricalRequest{SchemeID: "accelerator"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/historical", HistoricalRequest{SchemeID: "nope", StartingYear: 2020})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoricalPrices_CorrectAYear(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/api/historical/prices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]YearlyPriceDTO](t, rec)
	require.Len(t, rows, 11)
	assert.Equal(t, 2015, rows[0].Year)

	rec = s.do(t, http.MethodPut, "/api/historical/prices/2020", YearlyPriceDTO{High: 30000, Low: 4000, Average: 12000, Open: 7000, Close: 29000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/historical", HistoricalRequest{
		SchemeID: "accelerator", StartingYear: 2020, CostBasisMethod: "average", CurrentPrice: ptr(113976.0),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 240.0, decode[HistoricalDTO](t, rec).TotalCostBasis, 1e-9)

	rec = s.do(t, http.MethodPut, "/api/historical/prices/abc", YearlyPriceDTO{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/historical/prices/2021", YearlyPriceDTO{Average: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PRICE
// =============================================================================

func TestPrice_StatusTransitions(t *testing.T) {
	s := newTestServer(t, fixedSource(120000))

	rec := s.do(t, http.MethodGet, "/api/price", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, price.StatusFallback, decode[PriceDTO](t, rec).Status)

	dto, err := newTrackerRefresh(s)
	require.NoError(t, err)
	assert.Equal(t, price.StatusLive, dto.Status)
	assert.InDelta(t, 120000.0, dto.Price, 1e-9)

	latest, err := s.store.LatestQuote(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest, "refresh records the quote")
}

// =============================================================================
// PLANS
// =============================================================================

func TestPlans_Lifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/plans", PlanRequest{SchemeID: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/plans", map[string]any{
		"scheme_id":   "slow-burn",
		"name":        "Team",
		"growth_rate": 120,
		"custom_events": []map[string]any{
			{"time_period": 0, "percentage_vested": 20},
			{"time_period": 36, "percentage_vested": 100},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	plan := decode[PlanDTO](t, rec)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, 70.0, plan.GrowthRate, "growth is clamped on save")
	require.Len(t, plan.CustomEvents, 2)

	rec = s.do(t, http.MethodGet, "/api/plans/"+plan.ID+"/projection?view=yearly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[ProjectionDTO](t, rec)
	assert.True(t, p.Summary.UsedCustomSchedule)
	assert.InDelta(t, 100.0, p.Timeline[3].VestedPercent, 1e-9)

	rec = s.do(t, http.MethodPut, "/api/plans/"+plan.ID, PlanRequest{SchemeID: "accelerator", Name: "Renamed", GrowthRate: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[PlanDTO](t, rec)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Empty(t, updated.CustomEvents)
	assert.Equal(t, plan.CreatedAt, updated.CreatedAt)

	rec = s.do(t, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PlanDTO](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/plans/"+plan.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/plans/"+plan.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/plans/"+plan.ID, PlanRequest{SchemeID: "accelerator"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestReset_Reseeds(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	require.NoError(t, s.store.SaveYearlyPrice(ctx, generic.YearlyPrice{Year: 2020, Average: decimal.NewFromInt(1)}))
	rec := s.do(t, http.MethodPost, "/api/admin/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	prices, err := s.store.YearlyPrices(ctx)
	require.NoError(t, err)
	assert.True(t, prices[2020].Average.Equal(decimal.NewFromInt(11000)))

	schemes, err := s.store.ListSchemes(ctx)
	require.NoError(t, err)
	assert.Len(t, schemes, 3)
}

func TestSeed_IsIdempotent(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, s.store))
	scheme, err := s.store.GetScheme(ctx, "accelerator")
	require.NoError(t, err)
	assert.Equal(t, 1, scheme.Version, "seeding twice does not rewrite schemes")

	for _, preset := range vesting.DefaultSchemes() {
		stored, err := s.store.GetScheme(ctx, preset.ID)
		require.NoError(t, err)
		assert.Equal(t, preset.Name, stored.Name)
		assert.True(t, preset.TotalGrant(generic.HorizonYears).Value.Equal(stored.TotalGrant(generic.HorizonYears).Value), preset.ID)
	}
}

func TestPriceRefresher_RunNow(t *testing.T) {
	tracker := price.NewTracker(fixedSource(90000))
	r := NewPriceRefresher(tracker)

	res := r.RunNow()
	assert.Equal(t, price.StatusLive, res.Status)
	assert.False(t, r.NextRunTime().Before(time.Now().Add(4*time.Minute)))

	r.Interval = time.Hour
	r.Start()
	r.Start()
	r.Stop()
	r.Stop()
}
