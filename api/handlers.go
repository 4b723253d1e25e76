/*
handlers.go - HTTP API handlers for the vesting calculators

PURPOSE:
  Exposes the projection and historical calculators via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the pure
  calculators in vesting/ and historical/.

ENDPOINTS:
  Schemes:
    GET    /api/schemes                 List schemes
    GET    /api/schemes/{id}            Get scheme
    POST   /api/schemes                 Create or replace scheme from JSON

  Calculators:
    POST   /api/projections             Forward projection
    GET    /api/calculator/{scheme}     Projection with query params (?growth=&view=)
    POST   /api/historical              Historical evaluation

  Prices:
    GET    /api/historical/prices       Yearly price table
    PUT    /api/historical/prices/{year} Correct one year
    GET    /api/price                   Current spot quote + status
    POST   /api/price/refresh           Force a refresh

  Plans:
    GET    /api/plans                   List saved plans
    POST   /api/plans                   Save calculator state
    GET    /api/plans/{id}              Get plan
    PUT    /api/plans/{id}              Update plan
    DELETE /api/plans/{id}              Delete plan
    GET    /api/plans/{id}/projection   Projection for a saved plan

  Admin:
    POST   /api/admin/reset             Clear data and re-seed

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  Price failures never fail a calculation: the response carries
  price_status instead.

SEE ALSO:
  - dto.go: Request/response data structures
  - seed.go: Reference data loader
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         generic.Store
	SchemeFactory *factory.SchemeFactory
	Prices        *price.Tracker

	// DefaultGrowthRate applies when a request omits growth_rate.
	DefaultGrowthRate float64
}

// NewHandler creates a handler. tracker may be nil, in which case every
// calculation uses the fallback price.
func NewHandler(store generic.Store, tracker *price.Tracker) *Handler {
	if tracker == nil {
		tracker = price.NewTracker(nil)
	}
	return &Handler{
		Store:             store,
		SchemeFactory:     factory.NewSchemeFactory(),
		Prices:            tracker,
		DefaultGrowthRate: 15,
	}
}

// =============================================================================
// SCHEME HANDLERS
// =============================================================================

func (h *Handler) ListSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := h.Store.ListSchemes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list schemes", err)
		return
	}

	dtos := make([]SchemeDTO, len(schemes))
	for i := range schemes {
		dtos[i] = toSchemeDTO(h.SchemeFactory, &schemes[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetScheme(w http.ResponseWriter, r *http.Request) {
	scheme, err := h.Store.GetScheme(r.Context(), generic.SchemeID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get scheme", err)
		return
	}
	writeJSON(w, http.StatusOK, toSchemeDTO(h.SchemeFactory, scheme))
}

// CreateScheme validates a JSON scheme definition and stores it.
func (h *Handler) CreateScheme(w http.ResponseWriter, r *http.Request) {
	var req factory.SchemeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	scheme, err := h.SchemeFactory.FromJSON(req)
	if err != nil {
		writeDomainError(w, "Invalid scheme configuration", err)
		return
	}
	if err := h.Store.SaveScheme(r.Context(), *scheme); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scheme", err)
		return
	}

	saved, err := h.Store.GetScheme(r.Context(), scheme.ID)
	if err != nil {
		writeDomainError(w, "Failed to reload scheme", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSchemeDTO(h.SchemeFactory, saved))
}

// =============================================================================
// CALCULATOR HANDLERS
// =============================================================================

// Project runs the forward projection for a request body.
func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	scheme, err := h.Store.GetScheme(r.Context(), generic.SchemeID(req.SchemeID))
	if err != nil {
		writeDomainError(w, "Failed to load scheme", err)
		return
	}

	growth := h.DefaultGrowthRate
	if req.GrowthRate != nil {
		growth = *req.GrowthRate
	}
	spot, status := h.currentPrice(req.CurrentPrice)

	projection := vesting.Run(vesting.Input{
		Scheme:            scheme,
		CustomEvents:      factory.CustomEventsFromJSON(req.CustomEvents),
		GrowthRatePercent: growth,
		CurrentPrice:      spot,
	})
	writeJSON(w, http.StatusOK, toProjectionDTO(scheme.ID, projection, status, req.View == "yearly"))
}

// Calculator is the query-string form of Project, one URL per scheme.
func (h *Handler) Calculator(w http.ResponseWriter, r *http.Request) {
	scheme, err := h.Store.GetScheme(r.Context(), generic.SchemeID(chi.URLParam(r, "scheme")))
	if err != nil {
		writeDomainError(w, "Failed to load scheme", err)
		return
	}

	growth := h.DefaultGrowthRate
	if v := r.URL.Query().Get("growth"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid growth rate", err)
			return
		}
		growth = parsed
	}
	spot, status := h.currentPrice(nil)

	calc := vesting.NewCalculator(scheme, growth, spot)
	writeJSON(w, http.StatusOK, toProjectionDTO(scheme.ID, calc.Projection(), status, r.URL.Query().Get("view") == "yearly"))
}

// Historical replays a scheme against the stored price table.
func (h *Handler) Historical(w http.ResponseWriter, r *http.Request) {
	var req HistoricalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	method, err := historical.ParseCostBasisMethod(req.CostBasisMethod)
	if err != nil {
		writeDomainError(w, "Invalid cost basis method", err)
		return
	}
	if req.StartingYear <= 0 {
		writeError(w, http.StatusBadRequest, "starting_year is required", generic.ErrInvalidYear)
		return
	}

	scheme, err := h.Store.GetScheme(r.Context(), generic.SchemeID(req.SchemeID))
	if err != nil {
		writeDomainError(w, "Failed to load scheme", err)
		return
	}
	table, err := h.priceTable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load price table", err)
		return
	}
	spot, status := h.currentPrice(req.CurrentPrice)

	result := historical.Evaluate(scheme, req.StartingYear, method, table, spot)
	writeJSON(w, http.StatusOK, toHistoricalDTO(result, status))
}

// =============================================================================
// PRICE HANDLERS
// =============================================================================

func (h *Handler) ListHistoricalPrices(w http.ResponseWriter, r *http.Request) {
	table, err := h.priceTable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load price table", err)
		return
	}

	rows := table.Rows()
	dtos := make([]YearlyPriceDTO, len(rows))
	for i, p := range rows {
		dtos[i] = toYearlyPriceDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpdateHistoricalPrice corrects one year of the price table.
func (h *Handler) UpdateHistoricalPrice(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid year", generic.ErrInvalidYear)
		return
	}

	var req YearlyPriceDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Year = year
	if req.High < 0 || req.Low < 0 || req.Average < 0 || req.Open < 0 || req.Close < 0 {
		writeError(w, http.StatusBadRequest, "Prices must not be negative", nil)
		return
	}

	if err := h.Store.SaveYearlyPrice(r.Context(), req.toDomain()); err != nil {
		writeDomainError(w, "Failed to save price", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPriceDTO(h.Prices.Current()))
}

// RefreshPrice fetches a new quote. A failed fetch still answers 200 with
// the status the calculators will see.
func (h *Handler) RefreshPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	res, _ := h.Prices.Refresh(ctx)
	writeJSON(w, http.StatusOK, toPriceDTO(res))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}

	dtos := make([]PlanDTO, len(plans))
	for i, p := range plans {
		dtos[i] = toPlanDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	h.savePlan(w, r, generic.PlanID(uuid.NewString()), http.StatusCreated)
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id := generic.PlanID(chi.URLParam(r, "id"))
	if _, err := h.Store.GetPlan(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get plan", err)
		return
	}
	h.savePlan(w, r, id, http.StatusOK)
}

func (h *Handler) savePlan(w http.ResponseWriter, r *http.Request, id generic.PlanID, status int) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Store.GetScheme(r.Context(), generic.SchemeID(req.SchemeID)); err != nil {
		writeDomainError(w, "Failed to load scheme", err)
		return
	}

	plan := generic.Plan{
		ID:           id,
		SchemeID:     generic.SchemeID(req.SchemeID),
		Name:         req.Name,
		GrowthRate:   generic.ClampGrowthRate(req.GrowthRate),
		CustomEvents: factory.CustomEventsFromJSON(req.CustomEvents),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save plan", err)
		return
	}

	saved, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to reload plan", err)
		return
	}
	writeJSON(w, status, toPlanDTO(*saved))
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Store.GetPlan(r.Context(), generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(*plan))
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePlan(r.Context(), generic.PlanID(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, "Failed to delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlanProjection rebuilds the calculator for a saved plan at today's price.
func (h *Handler) PlanProjection(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Store.GetPlan(r.Context(), generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to get plan", err)
		return
	}
	scheme, err := h.Store.GetScheme(r.Context(), plan.SchemeID)
	if err != nil {
		writeDomainError(w, "Failed to load scheme", err)
		return
	}
	spot, status := h.currentPrice(nil)

	calc := vesting.FromPlan(*plan, scheme, spot)
	writeJSON(w, http.StatusOK, toProjectionDTO(scheme.ID, calc.Projection(), status, r.URL.Query().Get("view") == "yearly"))
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetDatabase clears all data and loads the reference data again.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := Seed(r.Context(), h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// currentPrice prefers a positive client override, then the tracked quote.
func (h *Handler) currentPrice(override *float64) (decimal.Decimal, price.Status) {
	if override != nil && *override > 0 {
		return decimal.NewFromFloat(*override), price.StatusLive
	}
	res := h.Prices.Current()
	return res.Price(), res.Status
}

// priceTable returns the stored table, or the bundled one if nothing is
// stored yet.
func (h *Handler) priceTable(ctx context.Context) (historical.Table, error) {
	stored, err := h.Store.YearlyPrices(ctx)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return historical.Bundled()
	}
	return historical.Table(stored), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's category.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
