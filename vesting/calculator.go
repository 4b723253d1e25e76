package vesting

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// CALCULATOR - Owned state that recomputes on every input change
// =============================================================================

// Calculator holds the user-editable inputs of one calculator session and
// the projection derived from them. Every setter recomputes synchronously;
// readers always see the projection for the latest inputs.
type Calculator struct {
	mu         sync.RWMutex
	input      Input
	projection Projection
	listeners  []func(Projection)
}

// NewCalculator starts a session on scheme at the given spot price.
func NewCalculator(scheme *generic.Scheme, growthRate float64, price decimal.Decimal) *Calculator {
	c := &Calculator{input: Input{
		Scheme:            scheme,
		GrowthRatePercent: growthRate,
		CurrentPrice:      price,
	}}
	c.projection = Run(c.input)
	return c
}

// OnChange registers fn to receive every recomputed projection.
func (c *Calculator) OnChange(fn func(Projection)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SelectScheme switches schemes and clears customizations.
func (c *Calculator) SelectScheme(scheme *generic.Scheme) Projection {
	return c.update(func(in *Input) {
		in.Scheme = scheme
		in.CustomEvents = nil
	})
}

// SetCustomEvents replaces the active schedule; nil restores the default.
func (c *Calculator) SetCustomEvents(events []generic.CustomVestingEvent) Projection {
	cp := append([]generic.CustomVestingEvent(nil), events...)
	return c.update(func(in *Input) { in.CustomEvents = cp })
}

// SetGrowthRate changes the growth assumption (clamped during projection).
func (c *Calculator) SetGrowthRate(rate float64) Projection {
	return c.update(func(in *Input) { in.GrowthRatePercent = rate })
}

// SetPrice applies a newly fetched spot price.
func (c *Calculator) SetPrice(price decimal.Decimal) Projection {
	return c.update(func(in *Input) { in.CurrentPrice = price })
}

// Projection returns the projection for the current inputs.
func (c *Calculator) Projection() Projection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection
}

// Input returns a copy of the current inputs.
func (c *Calculator) Input() Input {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in := c.input
	in.CustomEvents = append([]generic.CustomVestingEvent(nil), c.input.CustomEvents...)
	return in
}

func (c *Calculator) update(mutate func(*Input)) Projection {
	c.mu.Lock()
	mutate(&c.input)
	c.projection = Run(c.input)
	p := c.projection
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
	return p
}

// FromPlan rebuilds a calculator from a saved plan.
func FromPlan(plan generic.Plan, scheme *generic.Scheme, price decimal.Decimal) *Calculator {
	c := NewCalculator(scheme, plan.GrowthRate, price)
	if len(plan.CustomEvents) > 0 {
		c.SetCustomEvents(plan.CustomEvents)
	}
	return c
}
