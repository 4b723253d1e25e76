/*
store.go - Persistence interfaces for schemes, plans and price data

PURPOSE:
  Defines the interface between the calculators and the database. The
  calculators themselves are pure; the store only holds their inputs:
  reference schemes, saved calculator plans, the yearly price table and
  the history of spot quotes.

KEY INTERFACES:
  SchemeStore: Vesting scheme reference data
  PlanStore:   Saved calculator state (scheme + customizations + growth)
  PriceStore:  Yearly price table + append-only spot quote history
  Store:       All of the above

QUOTE HISTORY:
  Quotes are append-only. The latest recorded quote is the second line of
  defence after a live fetch fails, before the hardcoded default.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - price/tracker.go: Records and restores quotes
  - api/seed.go: Loads reference schemes and prices
*/
package generic

import "context"

// =============================================================================
// STORE INTERFACES
// =============================================================================

// SchemeStore persists vesting schemes.
type SchemeStore interface {
	// SaveScheme inserts or replaces a scheme (version is bumped on replace).
	SaveScheme(ctx context.Context, scheme Scheme) error

	// GetScheme returns ErrSchemeNotFound when id is unknown.
	GetScheme(ctx context.Context, id SchemeID) (*Scheme, error)

	// ListSchemes returns all schemes ordered by ID.
	ListSchemes(ctx context.Context) ([]Scheme, error)
}

// PlanStore persists saved calculator plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan Plan) error

	// GetPlan returns ErrPlanNotFound when id is unknown.
	GetPlan(ctx context.Context, id PlanID) (*Plan, error)

	ListPlans(ctx context.Context) ([]Plan, error)

	// DeletePlan returns ErrPlanNotFound when id is unknown.
	DeletePlan(ctx context.Context, id PlanID) error
}

// PriceStore persists the yearly price table and spot quote history.
type PriceStore interface {
	SaveYearlyPrice(ctx context.Context, p YearlyPrice) error

	// YearlyPrices returns the full table keyed by year.
	YearlyPrices(ctx context.Context) (map[int]YearlyPrice, error)

	// AppendQuote records a spot quote. Append-only.
	AppendQuote(ctx context.Context, q PriceQuote) error

	// LatestQuote returns the most recent quote by LastUpdated, or nil.
	LatestQuote(ctx context.Context) (*PriceQuote, error)
}

// Store bundles every persistence capability.
type Store interface {
	SchemeStore
	PlanStore
	PriceStore

	// Reset removes all data.
	Reset(ctx context.Context) error
}
