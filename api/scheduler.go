/*
scheduler.go - Background spot price refresher

PURPOSE:
  Periodically refreshes the tracked BTC spot price so calculator
  responses use a recent quote without every request hitting the upstream
  API.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Refreshes once immediately on start
  - Each refresh carries its own timeout
  - Failures are logged; the tracker keeps serving the last good quote
    (reported stale) or the fallback price

USAGE:
  refresher := NewPriceRefresher(tracker)
  refresher.Interval = 5 * time.Minute
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - price/tracker.go: Sequencing and staleness
  - handlers.go: RefreshPrice endpoint (manual refresh)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/vesting-engine/price"
)

// PriceRefresher keeps a price.Tracker fresh.
type PriceRefresher struct {
	Tracker  *price.Tracker
	Interval time.Duration
	Timeout  time.Duration
	Enabled  bool

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

func NewPriceRefresher(tracker *price.Tracker) *PriceRefresher {
	return &PriceRefresher{
		Tracker:  tracker,
		Interval: 5 * time.Minute,
		Timeout:  10 * time.Second,
		Enabled:  true,
	}
}

// Start begins the refresher. Calling Start twice is a no-op.
func (pr *PriceRefresher) Start() {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	if !pr.Enabled {
		log.Println("[Refresher] Disabled, not starting")
		return
	}
	if pr.ticker != nil {
		return
	}

	pr.ticker = time.NewTicker(pr.Interval)
	pr.stop = make(chan struct{})
	pr.wg.Add(1)

	go pr.run(pr.ticker, pr.stop)

	log.Printf("[Refresher] Started with interval: %v", pr.Interval)
}

// Stop stops the refresher and waits for an in-flight refresh.
func (pr *PriceRefresher) Stop() {
	pr.mu.Lock()
	ticker, stop := pr.ticker, pr.stop
	pr.ticker, pr.stop = nil, nil
	pr.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(stop)
	// RunNow takes mu, so wait outside the lock.
	pr.wg.Wait()
	log.Println("[Refresher] Stopped")
}

func (pr *PriceRefresher) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer pr.wg.Done()

	pr.RunNow()

	for {
		select {
		case <-ticker.C:
			pr.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow refreshes immediately and returns the resulting status.
func (pr *PriceRefresher) RunNow() price.Result {
	ctx, cancel := context.WithTimeout(context.Background(), pr.Timeout)
	defer cancel()

	res, err := pr.Tracker.Refresh(ctx)
	if err != nil {
		log.Printf("[Refresher] Refresh failed, serving %s price %s: %v", res.Status, res.Price().StringFixed(2), err)
	} else {
		log.Printf("[Refresher] BTC/USD %s (%s)", res.Price().StringFixed(2), res.Status)
	}

	pr.mu.Lock()
	pr.lastRun = time.Now()
	pr.mu.Unlock()
	return res
}

// NextRunTime returns when the next scheduled refresh will occur.
func (pr *PriceRefresher) NextRunTime() time.Time {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.lastRun.IsZero() {
		return time.Now()
	}
	return pr.lastRun.Add(pr.Interval)
}
