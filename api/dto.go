/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Internally every
  amount is a decimal; on the wire BTC and USD are plain JSON numbers so
  charting clients can consume them directly.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Schemes:     SchemeDTO (wraps factory.SchemeJSON)
  Projection:  ProjectionRequest, ProjectionDTO, TimelinePointDTO, SummaryDTO
  Historical:  HistoricalRequest, HistoricalDTO, HistoricalYearDTO, GrantDTO
  Prices:      YearlyPriceDTO, PriceDTO
  Plans:       PlanRequest, PlanDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/scheme.go: SchemeJSON and CustomEventJSON
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/factory"
	"github.com/warp/vesting-engine/generic"
	"github.com/warp/vesting-engine/historical"
	"github.com/warp/vesting-engine/price"
	"github.com/warp/vesting-engine/vesting"
)

// =============================================================================
// SCHEMES
// =============================================================================

// SchemeDTO represents a scheme in API responses.
type SchemeDTO struct {
	factory.SchemeJSON
	Version        int     `json:"version"`
	HasAnnualGrant bool    `json:"has_annual_grant"`
	TotalGrantBTC  float64 `json:"total_grant_btc"`
}

func toSchemeDTO(f *factory.SchemeFactory, s *generic.Scheme) SchemeDTO {
	return SchemeDTO{
		SchemeJSON:     f.ToJSON(s),
		Version:        s.Version,
		HasAnnualGrant: s.HasAnnualGrant(),
		TotalGrantBTC:  s.TotalGrant(generic.HorizonYears).Float64(),
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

// ProjectionRequest asks for a forward projection. Omitted growth rate and
// price use the server defaults and the tracked spot price.
type ProjectionRequest struct {
	SchemeID     string                    `json:"scheme_id"`
	CustomEvents []factory.CustomEventJSON `json:"custom_events,omitempty"`
	GrowthRate   *float64                  `json:"growth_rate,omitempty"`
	CurrentPrice *float64                  `json:"current_price,omitempty"`
	View         string                    `json:"view,omitempty"` // "monthly" (default) or "yearly"
}

type TimelinePointDTO struct {
	Month             int     `json:"month"`
	Year              int     `json:"year"`
	CumulativeBitcoin float64 `json:"cumulative_bitcoin"`
	VestedAmount      float64 `json:"vested_amount"`
	EmployerBalance   float64 `json:"employer_balance"`
	VestedPercent     float64 `json:"vested_percent"`
	BonusPercent      float64 `json:"bonus_percent,omitempty"`
	BitcoinPrice      float64 `json:"bitcoin_price"`
	CurrentValue      float64 `json:"current_value"`
	VestedValue       float64 `json:"vested_value"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Month   int    `json:"month"`
	Message string `json:"message"`
}

type SummaryDTO struct {
	TotalBitcoin        float64      `json:"total_bitcoin"`
	EmployerCost        float64      `json:"employer_cost"`
	FinalPrice          float64      `json:"final_price"`
	FinalValue          float64      `json:"final_value"`
	ValueAtTenYears     float64      `json:"value_at_ten_years"`
	VestedAtTenYears    float64      `json:"vested_at_ten_years"`
	FullyVestedMonth    *int         `json:"fully_vested_month,omitempty"`
	ReturnMultiple      float64      `json:"return_multiple"`
	GrowthRate          float64      `json:"growth_rate"`
	StartingPrice       float64      `json:"starting_price"`
	AnnualGrantsApplied int          `json:"annual_grants_applied"`
	UsedCustomSchedule  bool         `json:"used_custom_schedule"`
	Warnings            []WarningDTO `json:"warnings,omitempty"`
}

type ProjectionDTO struct {
	SchemeID    string             `json:"scheme_id"`
	PriceStatus price.Status       `json:"price_status"`
	Timeline    []TimelinePointDTO `json:"timeline"`
	Summary     SummaryDTO         `json:"summary"`
}

func toProjectionDTO(schemeID generic.SchemeID, p vesting.Projection, status price.Status, yearly bool) ProjectionDTO {
	points := p.Timeline
	if yearly {
		points = p.Timeline.Yearly()
	}
	dto := ProjectionDTO{
		SchemeID:    string(schemeID),
		PriceStatus: status,
		Timeline:    make([]TimelinePointDTO, 0, len(points)),
		Summary:     toSummaryDTO(p.Summary),
	}
	for _, pt := range points {
		dto.Timeline = append(dto.Timeline, TimelinePointDTO{
			Month:             int(pt.Month),
			Year:              pt.Year,
			CumulativeBitcoin: pt.CumulativeBitcoin.Float64(),
			VestedAmount:      pt.VestedAmount.Float64(),
			EmployerBalance:   pt.EmployerBalance.Float64(),
			VestedPercent:     f64(pt.VestedPercent),
			BonusPercent:      f64(pt.BonusPercent),
			BitcoinPrice:      f64(pt.BitcoinPrice),
			CurrentValue:      pt.CurrentValue.Float64(),
			VestedValue:       pt.VestedValue.Float64(),
		})
	}
	return dto
}

func toSummaryDTO(s vesting.Summary) SummaryDTO {
	dto := SummaryDTO{
		TotalBitcoin:        s.TotalBitcoin.Float64(),
		EmployerCost:        s.EmployerCost.Float64(),
		FinalPrice:          f64(s.FinalPrice),
		FinalValue:          s.FinalValue.Float64(),
		ValueAtTenYears:     s.ValueAtTenYears.Float64(),
		VestedAtTenYears:    s.VestedAtTenYears.Float64(),
		ReturnMultiple:      f64(s.ReturnMultiple),
		GrowthRate:          s.GrowthRatePercent,
		StartingPrice:       f64(s.StartingPrice),
		AnnualGrantsApplied: s.AnnualGrantsApplied,
		UsedCustomSchedule:  s.UsedCustomSchedule,
	}
	if s.FullyVestedMonth != nil {
		m := int(*s.FullyVestedMonth)
		dto.FullyVestedMonth = &m
	}
	for _, w := range s.Warnings {
		dto.Warnings = append(dto.Warnings, WarningDTO{Code: w.Code, Month: int(w.Month), Message: w.Message})
	}
	return dto
}

// =============================================================================
// HISTORICAL
// =============================================================================

type HistoricalRequest struct {
	SchemeID        string   `json:"scheme_id"`
	StartingYear    int      `json:"starting_year"`
	CostBasisMethod string   `json:"cost_basis_method"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
}

type HistoricalYearDTO struct {
	Year              int     `json:"year"`
	Grant             float64 `json:"grant"`
	CumulativeBitcoin float64 `json:"cumulative_bitcoin"`
	VestedPercent     float64 `json:"vested_percent"`
	VestedAmount      float64 `json:"vested_amount"`
	Price             float64 `json:"price"`
	CostBasisToDate   float64 `json:"cost_basis_to_date"`
	Value             float64 `json:"value"`
	UsesCurrentPrice  bool    `json:"uses_current_price"`
}

type GrantDTO struct {
	Year           int     `json:"year"`
	Kind           string  `json:"kind"`
	Amount         float64 `json:"amount"`
	Price          float64 `json:"price"`
	CostBasis      float64 `json:"cost_basis"`
	PriceAvailable bool    `json:"price_available"`
	PriceSource    string  `json:"price_source"`
}

type HistoricalDTO struct {
	SchemeID            string              `json:"scheme_id"`
	StartingYear        int                 `json:"starting_year"`
	AsOfYear            int                 `json:"as_of_year"`
	CostBasisMethod     string              `json:"cost_basis_method"`
	CurrentPrice        float64             `json:"current_price"`
	PriceStatus         price.Status        `json:"price_status"`
	Timeline            []HistoricalYearDTO `json:"timeline"`
	GrantBreakdown      []GrantDTO          `json:"grant_breakdown"`
	TotalBitcoinGranted float64             `json:"total_bitcoin_granted"`
	TotalCostBasis      float64             `json:"total_cost_basis"`
	CurrentValue        float64             `json:"current_value"`
	VestedValue         float64             `json:"vested_value"`
	TotalReturn         float64             `json:"total_return"`
	ReturnPercent       float64             `json:"return_percent"`
	AnnualizedReturn    float64             `json:"annualized_return_percent"`
	AverageCostPerBTC   float64             `json:"average_cost_per_btc"`
	MissingYears        []int               `json:"missing_years"`
}

func toHistoricalDTO(r historical.Result, status price.Status) HistoricalDTO {
	dto := HistoricalDTO{
		SchemeID:            string(r.SchemeID),
		StartingYear:        r.StartingYear,
		AsOfYear:            r.AsOfYear,
		CostBasisMethod:     string(r.Method),
		CurrentPrice:        f64(r.CurrentPrice),
		PriceStatus:         status,
		Timeline:            make([]HistoricalYearDTO, 0, len(r.Timeline)),
		GrantBreakdown:      make([]GrantDTO, 0, len(r.GrantBreakdown)),
		TotalBitcoinGranted: r.TotalBitcoinGranted.Float64(),
		TotalCostBasis:      r.TotalCostBasis.Float64(),
		CurrentValue:        r.CurrentValue.Float64(),
		VestedValue:         r.VestedValue.Float64(),
		TotalReturn:         r.TotalReturn.Float64(),
		ReturnPercent:       f64(r.ReturnPercent),
		AnnualizedReturn:    f64(r.AnnualizedReturn),
		AverageCostPerBTC:   f64(r.AverageCostPerBTC),
		MissingYears:        append([]int{}, r.MissingYears...),
	}
	for _, y := range r.Timeline {
		dto.Timeline = append(dto.Timeline, HistoricalYearDTO{
			Year:              y.Year,
			Grant:             y.Grant.Float64(),
			CumulativeBitcoin: y.CumulativeBitcoin.Float64(),
			VestedPercent:     f64(y.VestedPercent),
			VestedAmount:      y.VestedAmount.Float64(),
			Price:             f64(y.Price),
			CostBasisToDate:   y.CostBasisToDate.Float64(),
			Value:             y.Value.Float64(),
			UsesCurrentPrice:  y.UsesCurrentPrice,
		})
	}
	for _, g := range r.GrantBreakdown {
		dto.GrantBreakdown = append(dto.GrantBreakdown, GrantDTO{
			Year:           g.Year,
			Kind:           string(g.Kind),
			Amount:         g.Amount.Float64(),
			Price:          f64(g.Price),
			CostBasis:      g.CostBasis.Float64(),
			PriceAvailable: g.PriceAvailable,
			PriceSource:    g.PriceSource,
		})
	}
	return dto
}

// =============================================================================
// PRICES
// =============================================================================

type YearlyPriceDTO struct {
	Year    int     `json:"year"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Average float64 `json:"average"`
	Open    float64 `json:"open"`
	Close   float64 `json:"close"`
}

func toYearlyPriceDTO(p generic.YearlyPrice) YearlyPriceDTO {
	return YearlyPriceDTO{
		Year: p.Year, High: f64(p.High), Low: f64(p.Low), Average: f64(p.Average), Open: f64(p.Open), Close: f64(p.Close),
	}
}

func (d YearlyPriceDTO) toDomain() generic.YearlyPrice {
	return generic.YearlyPrice{
		Year:    d.Year,
		High:    decimal.NewFromFloat(d.High),
		Low:     decimal.NewFromFloat(d.Low),
		Average: decimal.NewFromFloat(d.Average),
		Open:    decimal.NewFromFloat(d.Open),
		Close:   decimal.NewFromFloat(d.Close),
	}
}

type PriceDTO struct {
	Price       float64      `json:"price"`
	Change24h   float64      `json:"change_24h"`
	LastUpdated string       `json:"last_updated,omitempty"`
	Source      string       `json:"source"`
	Status      price.Status `json:"status"`
	Error       string       `json:"error,omitempty"`
}

func toPriceDTO(r price.Result) PriceDTO {
	dto := PriceDTO{
		Price:     f64(r.Quote.Price),
		Change24h: f64(r.Quote.Change24h),
		Source:    r.Quote.Source,
		Status:    r.Status,
	}
	if !r.Quote.LastUpdated.IsZero() {
		dto.LastUpdated = r.Quote.LastUpdated.Format(time.RFC3339)
	}
	if r.Err != nil {
		dto.Error = r.Err.Error()
	}
	return dto
}

// =============================================================================
// PLANS
// =============================================================================

type PlanRequest struct {
	SchemeID     string                    `json:"scheme_id"`
	Name         string                    `json:"name"`
	GrowthRate   float64                   `json:"growth_rate"`
	CustomEvents []factory.CustomEventJSON `json:"custom_events,omitempty"`
}

type PlanDTO struct {
	ID           string                    `json:"id"`
	SchemeID     string                    `json:"scheme_id"`
	Name         string                    `json:"name"`
	GrowthRate   float64                   `json:"growth_rate"`
	CustomEvents []factory.CustomEventJSON `json:"custom_events"`
	CreatedAt    string                    `json:"created_at"`
	UpdatedAt    string                    `json:"updated_at"`
}

func toPlanDTO(p generic.Plan) PlanDTO {
	return PlanDTO{
		ID:           string(p.ID),
		SchemeID:     string(p.SchemeID),
		Name:         p.Name,
		GrowthRate:   p.GrowthRate,
		CustomEvents: factory.CustomEventsToJSON(p.CustomEvents),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func f64(d decimal.Decimal) float64 { return d.InexactFloat64() }
