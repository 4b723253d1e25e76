/*
Package factory provides JSON to Go scheme conversion.

PURPOSE:
  Converts JSON scheme definitions into generic.Scheme values and back.
  Operators define or tweak vesting schemes as JSON (API body, seed data,
  database column) and the factory validates and builds the Go structs.

JSON SCHEMA:
  {
    "id": "steady-builder",
    "name": "Stacker",
    "tagline": "Balance upfront and ongoing rewards",
    "initial_grant": 0.015,
    "annual_grant": 0.001,
    "max_annual_grants": 5,
    "vesting_schedule": [
      {"month": 0,   "percent": 0},
      {"month": 60,  "percent": 50},
      {"month": 120, "percent": 100}
    ],
    "bonuses": [{"month": 120, "percent": 5, "label": "Loyalty"}]
  }

VALIDATION:
  - id and name are required
  - grants are non-negative BTC amounts
  - the schedule must be non-decreasing, inside the 20-year horizon,
    and end at 100%

Custom vesting events (a user's edits to a schedule) share the milestone
shape but are NOT validated here: they are accepted as-is and the
projector reports warnings instead.

USAGE:
  f := factory.NewSchemeFactory()
  scheme, err := f.ParseScheme(`{"id": "quick", "name": "Quick", ...}`)

SEE ALSO:
  - generic/types.go: Scheme type definition
  - vesting/schemes.go: Reference scheme presets
  - store/sqlite/sqlite.go: Stores schemes as JSON through this package
*/
package factory

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SchemeJSON is the JSON representation of a scheme.
type SchemeJSON struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Tagline         string          `json:"tagline,omitempty"`
	Description     string          `json:"description,omitempty"`
	InitialGrant    float64         `json:"initial_grant"`
	AnnualGrant     *float64        `json:"annual_grant,omitempty"`
	MaxAnnualGrants *int            `json:"max_annual_grants,omitempty"`
	Schedule        []MilestoneJSON `json:"vesting_schedule"`
	Bonuses         []MilestoneJSON `json:"bonuses,omitempty"`
}

// MilestoneJSON is a schedule milestone or bonus.
type MilestoneJSON struct {
	Month   int     `json:"month"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label,omitempty"`
}

// CustomEventJSON is a user-defined vesting event.
type CustomEventJSON struct {
	ID               string  `json:"id,omitempty"`
	TimePeriod       int     `json:"time_period"`
	PercentageVested float64 `json:"percentage_vested"`
	Label            string  `json:"label,omitempty"`
}

// =============================================================================
// SCHEME FACTORY
// =============================================================================

// SchemeFactory converts JSON schemes to Go structs.
type SchemeFactory struct{}

func NewSchemeFactory() *SchemeFactory {
	return &SchemeFactory{}
}

// ParseScheme parses and validates a JSON scheme definition.
func (f *SchemeFactory) ParseScheme(jsonStr string) (*generic.Scheme, error) {
	var sj SchemeJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse scheme JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts SchemeJSON to a validated generic.Scheme.
func (f *SchemeFactory) FromJSON(sj SchemeJSON) (*generic.Scheme, error) {
	if err := validate(sj); err != nil {
		return nil, err
	}
	scheme := build(sj)
	if warnings := generic.ValidateSchedule(scheme.Schedule); len(warnings) > 0 {
		return nil, &generic.SchemeError{SchemeID: scheme.ID, Field: "vesting_schedule", Message: warnings[0].Message}
	}
	return scheme, nil
}

// DecodeStored rebuilds a scheme previously written by MarshalScheme. It
// skips validation: stored schemes were validated on the way in.
func (f *SchemeFactory) DecodeStored(data string) (*generic.Scheme, error) {
	var sj SchemeJSON
	if err := json.Unmarshal([]byte(data), &sj); err != nil {
		return nil, fmt.Errorf("failed to decode stored scheme: %w", err)
	}
	return build(sj), nil
}

func build(sj SchemeJSON) *generic.Scheme {
	scheme := &generic.Scheme{
		ID:           generic.SchemeID(sj.ID),
		Name:         sj.Name,
		Tagline:      sj.Tagline,
		Description:  sj.Description,
		InitialGrant: generic.SanitizeBTC(sj.InitialGrant),
	}
	if sj.AnnualGrant != nil {
		annual := generic.SanitizeBTC(*sj.AnnualGrant)
		scheme.AnnualGrant = &annual
	}
	if sj.MaxAnnualGrants != nil {
		n := *sj.MaxAnnualGrants
		scheme.MaxAnnualGrants = &n
	}
	for _, m := range sj.Schedule {
		scheme.Schedule = append(scheme.Schedule, generic.Milestone{
			Month:   generic.Month(m.Month),
			Percent: decimal.NewFromFloat(m.Percent),
			Label:   m.Label,
		})
	}
	scheme.Schedule = scheme.Schedule.Sorted()
	for _, b := range sj.Bonuses {
		scheme.Bonuses = append(scheme.Bonuses, generic.Bonus{
			Month:   generic.Month(b.Month),
			Percent: decimal.NewFromFloat(b.Percent),
			Label:   b.Label,
		})
	}
	return scheme
}

// ToJSON converts a Scheme to SchemeJSON.
func (f *SchemeFactory) ToJSON(scheme *generic.Scheme) SchemeJSON {
	sj := SchemeJSON{
		ID:           string(scheme.ID),
		Name:         scheme.Name,
		Tagline:      scheme.Tagline,
		Description:  scheme.Description,
		InitialGrant: scheme.InitialGrant.Float64(),
	}
	if scheme.AnnualGrant != nil {
		v := scheme.AnnualGrant.Float64()
		sj.AnnualGrant = &v
	}
	if scheme.MaxAnnualGrants != nil {
		n := *scheme.MaxAnnualGrants
		sj.MaxAnnualGrants = &n
	}
	for _, m := range scheme.Schedule {
		sj.Schedule = append(sj.Schedule, MilestoneJSON{Month: int(m.Month), Percent: m.Percent.InexactFloat64(), Label: m.Label})
	}
	for _, b := range scheme.Bonuses {
		sj.Bonuses = append(sj.Bonuses, MilestoneJSON{Month: int(b.Month), Percent: b.Percent.InexactFloat64(), Label: b.Label})
	}
	return sj
}

// MarshalScheme encodes a scheme for storage.
func (f *SchemeFactory) MarshalScheme(scheme *generic.Scheme) (string, error) {
	b, err := json.Marshal(f.ToJSON(scheme))
	if err != nil {
		return "", fmt.Errorf("failed to encode scheme %s: %w", scheme.ID, err)
	}
	return string(b), nil
}

// =============================================================================
// CUSTOM EVENTS
// =============================================================================

// CustomEventsFromJSON converts user events. Missing IDs are generated;
// non-finite percentages become 0. Nothing is rejected.
func CustomEventsFromJSON(in []CustomEventJSON) []generic.CustomVestingEvent {
	if len(in) == 0 {
		return nil
	}
	out := make([]generic.CustomVestingEvent, 0, len(in))
	for _, e := range in {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		pct := e.PercentageVested
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			pct = 0
		}
		out = append(out, generic.CustomVestingEvent{
			ID:               id,
			TimePeriod:       generic.Month(e.TimePeriod),
			PercentageVested: decimal.NewFromFloat(pct),
			Label:            e.Label,
		})
	}
	return out
}

// CustomEventsToJSON is the inverse of CustomEventsFromJSON.
func CustomEventsToJSON(events []generic.CustomVestingEvent) []CustomEventJSON {
	out := make([]CustomEventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, CustomEventJSON{
			ID:               e.ID,
			TimePeriod:       int(e.TimePeriod),
			PercentageVested: e.PercentageVested.InexactFloat64(),
			Label:            e.Label,
		})
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(sj SchemeJSON) error {
	fail := func(field, msg string) error {
		return &generic.SchemeError{SchemeID: generic.SchemeID(sj.ID), Field: field, Message: msg}
	}

	if sj.ID == "" {
		return fail("id", "is required")
	}
	if sj.Name == "" {
		return fail("name", "is required")
	}
	if !finiteNonNegative(sj.InitialGrant) {
		return fail("initial_grant", "must be a non-negative BTC amount")
	}
	if sj.AnnualGrant != nil && !finiteNonNegative(*sj.AnnualGrant) {
		return fail("annual_grant", "must be a non-negative BTC amount")
	}
	if sj.MaxAnnualGrants != nil && *sj.MaxAnnualGrants < 0 {
		return fail("max_annual_grants", "must not be negative")
	}
	if len(sj.Schedule) == 0 {
		return fail("vesting_schedule", "must contain at least one milestone")
	}
	for _, b := range sj.Bonuses {
		if b.Month < 0 || b.Month > int(generic.HorizonMonths) || !finiteNonNegative(b.Percent) {
			return fail("bonuses", fmt.Sprintf("invalid bonus at month %d", b.Month))
		}
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
