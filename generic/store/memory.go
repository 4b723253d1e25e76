// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	schemes map[generic.SchemeID]generic.Scheme
	plans   map[generic.PlanID]generic.Plan
	prices  map[int]generic.YearlyPrice
	quotes  []generic.PriceQuote
}

var _ generic.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		schemes: make(map[generic.SchemeID]generic.Scheme),
		plans:   make(map[generic.PlanID]generic.Plan),
		prices:  make(map[int]generic.YearlyPrice),
	}
}

// SaveScheme stores a scheme, bumping its version when it already exists.
func (m *Memory) SaveScheme(_ context.Context, scheme generic.Scheme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.schemes[scheme.ID]; ok {
		scheme.Version = existing.Version + 1
	} else if scheme.Version == 0 {
		scheme.Version = 1
	}
	m.schemes[scheme.ID] = scheme
	return nil
}

func (m *Memory) GetScheme(_ context.Context, id generic.SchemeID) (*generic.Scheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schemes[id]
	if !ok {
		return nil, generic.ErrSchemeNotFound
	}
	return &s, nil
}

func (m *Memory) ListSchemes(_ context.Context) ([]generic.Scheme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.Scheme, 0, len(m.schemes))
	for _, s := range m.schemes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SavePlan(_ context.Context, plan generic.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.plans[plan.ID]; ok && plan.CreatedAt.IsZero() {
		plan.CreatedAt = existing.CreatedAt
	}
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id generic.PlanID) (*generic.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, generic.ErrPlanNotFound
	}
	return &p, nil
}

func (m *Memory) ListPlans(_ context.Context) ([]generic.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeletePlan(_ context.Context, id generic.PlanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[id]; !ok {
		return generic.ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *Memory) SaveYearlyPrice(_ context.Context, p generic.YearlyPrice) error {
	if p.Year <= 0 {
		return generic.ErrInvalidYear
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[p.Year] = p
	return nil
}

func (m *Memory) YearlyPrices(_ context.Context) (map[int]generic.YearlyPrice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int]generic.YearlyPrice, len(m.prices))
	for y, p := range m.prices {
		out[y] = p
	}
	return out, nil
}

// AppendQuote adds a quote. Append-only.
func (m *Memory) AppendQuote(_ context.Context, q generic.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return nil
}

func (m *Memory) LatestQuote(_ context.Context) (*generic.PriceQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *generic.PriceQuote
	for i := range m.quotes {
		if latest == nil || m.quotes[i].LastUpdated.After(latest.LastUpdated) {
			q := m.quotes[i]
			latest = &q
		}
	}
	return latest, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schemes = make(map[generic.SchemeID]generic.Scheme)
	m.plans = make(map[generic.PlanID]generic.Plan)
	m.prices = make(map[int]generic.YearlyPrice)
	m.quotes = nil
	return nil
}
