package price

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/vesting-engine/generic"
)

// =============================================================================
// RESULT - What the calculators are told about the price
// =============================================================================

type Status string

const (
	// StatusLive: a quote fetched within StaleAfter.
	StatusLive Status = "live"
	// StatusStale: the last good quote is older than StaleAfter, or the
	// latest refresh failed and an earlier quote is being reused.
	StatusStale Status = "stale"
	// StatusFallback: no quote has ever been obtained.
	StatusFallback Status = "fallback"
)

// Result is the price to use plus how much it can be trusted.
type Result struct {
	Status Status
	Quote  generic.PriceQuote
	// Err is the most recent refresh failure, if any.
	Err error
}

// Price is a shortcut for Quote.Price.
func (r Result) Price() decimal.Decimal { return r.Quote.Price }

// =============================================================================
// TRACKER
// =============================================================================

// Tracker owns the current quote. Refreshes may overlap; each is numbered
// when it starts and a response is applied only if no later-numbered
// refresh has already been applied, so the most recent request wins.
type Tracker struct {
	source     Source
	store      generic.PriceStore
	staleAfter time.Duration
	fallback   decimal.Decimal
	now        func() time.Time

	mu        sync.RWMutex
	issued    uint64
	applied   uint64
	current   *generic.PriceQuote
	lastErr   error
	listeners []func(Result)
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithStore records every applied quote and allows Restore.
func WithStore(s generic.PriceStore) TrackerOption {
	return func(t *Tracker) { t.store = s }
}

// WithStaleAfter sets how old a quote may be before it is reported stale.
// A non-positive duration keeps the default.
func WithStaleAfter(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.staleAfter = d
		}
	}
}

// WithFallback overrides the default fallback price.
func WithFallback(p decimal.Decimal) TrackerOption {
	return func(t *Tracker) {
		if p.IsPositive() {
			t.fallback = p
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(source Source, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		source:     source,
		staleAfter: 15 * time.Minute,
		fallback:   generic.DefaultBTCPrice,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange registers fn to receive every applied quote.
func (t *Tracker) OnChange(fn func(Result)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Restore loads the latest recorded quote from the store, if any. A live
// quote that was already applied is kept.
func (t *Tracker) Restore(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	q, err := t.store.LatestQuote(ctx)
	if err != nil || q == nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		t.current = q
	}
	return nil
}

// Refresh fetches a new quote. The returned Result reflects the tracker's
// state after this refresh, which may be a newer quote if a later refresh
// finished first.
func (t *Tracker) Refresh(ctx context.Context) (Result, error) {
	if t.source == nil {
		return t.Current(), generic.ErrPriceUnavailable
	}

	t.mu.Lock()
	t.issued++
	seq := t.issued
	t.mu.Unlock()

	q, err := t.source.FetchCurrent(ctx)
	if err == nil && !q.Price.IsPositive() {
		err = ErrMalformedQuote
	}
	if err != nil {
		t.mu.Lock()
		if seq > t.applied {
			t.lastErr = err
		}
		t.mu.Unlock()
		log.Printf("[Price] refresh #%d failed: %v", seq, err)
		return t.Current(), err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.LastUpdated.IsZero() {
		q.LastUpdated = t.now().UTC()
	}

	t.mu.Lock()
	if seq < t.applied {
		t.mu.Unlock()
		log.Printf("[Price] discarding refresh #%d, #%d already applied", seq, t.applied)
		return t.Current(), nil
	}
	t.applied = seq
	t.current = &q
	t.lastErr = nil
	listeners := slices.Clone(t.listeners)
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.AppendQuote(ctx, q); err != nil {
			log.Printf("[Price] failed to record quote: %v", err)
		}
	}

	res := t.Current()
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

// Current reports the quote to use right now.
func (t *Tracker) Current() Result {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.current == nil {
		return Result{
			Status: StatusFallback,
			Quote:  generic.PriceQuote{Price: t.fallback, Source: "fallback"},
			Err:    t.lastErr,
		}
	}

	status := StatusLive
	if t.lastErr != nil || (t.staleAfter > 0 && t.now().Sub(t.current.LastUpdated) > t.staleAfter) {
		status = StatusStale
	}
	return Result{Status: status, Quote: *t.current, Err: t.lastErr}
}

// Price returns the price to feed into the calculators.
func (t *Tracker) Price() decimal.Decimal {
	return t.Current().Price()
}
