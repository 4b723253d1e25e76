// Package price fetches the current BTC/USD spot price and tracks which
// quote the calculators should use.
package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"github.com/warp/vesting-engine/generic"
)

const (
	// DefaultCoinGeckoURL is the simple-price endpoint for BTC in USD.
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=usd&include_24hr_change=true&include_last_updated_at=true"

	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
	sourceName     = "coingecko"
)

var (
	// ErrUpstreamStatus indicates a non-200 response from the price API.
	ErrUpstreamStatus = errors.New("price: unexpected upstream status")
	// ErrRateLimited indicates the price API rate limit was hit.
	ErrRateLimited = errors.New("price: rate limited")
	// ErrMalformedQuote indicates the response did not carry a usable price.
	ErrMalformedQuote = errors.New("price: malformed quote")
)

// Source produces spot quotes.
type Source interface {
	FetchCurrent(ctx context.Context) (generic.PriceQuote, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (generic.PriceQuote, error)

func (f SourceFunc) FetchCurrent(ctx context.Context) (generic.PriceQuote, error) { return f(ctx) }

// =============================================================================
// COINGECKO
// =============================================================================

// CoinGeckoSource reads the spot price from the CoinGecko public API.
type CoinGeckoSource struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewCoinGeckoSource creates a source for url; an empty url uses the public
// endpoint and a non-positive timeout uses the default.
func NewCoinGeckoSource(url string, timeout time.Duration) *CoinGeckoSource {
	if url == "" {
		url = DefaultCoinGeckoURL
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &CoinGeckoSource{
		url:     url,
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "vesting-engine",
			MaxResponseBodySize: maxBodySize,
		},
	}
}

type simplePriceResponse struct {
	Bitcoin *struct {
		USD           decimal.Decimal `json:"usd"`
		USD24hChange  decimal.Decimal `json:"usd_24h_change"`
		LastUpdatedAt int64           `json:"last_updated_at"`
	} `json:"bitcoin"`
}

// FetchCurrent performs one GET against the simple-price endpoint.
func (s *CoinGeckoSource) FetchCurrent(ctx context.Context) (generic.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return generic.PriceQuote{}, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return generic.PriceQuote{}, fmt.Errorf("price: fetching quote: %w", err)
	}

	switch code := resp.StatusCode(); {
	case code == fasthttp.StatusTooManyRequests:
		return generic.PriceQuote{}, ErrRateLimited
	case code != fasthttp.StatusOK:
		return generic.PriceQuote{}, fmt.Errorf("%w: %d", ErrUpstreamStatus, code)
	}

	return decodeSimplePrice(resp.Body())
}

func decodeSimplePrice(body []byte) (generic.PriceQuote, error) {
	var raw simplePriceResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return generic.PriceQuote{}, fmt.Errorf("price: parsing quote: %w", err)
	}
	if raw.Bitcoin == nil || !raw.Bitcoin.USD.IsPositive() {
		return generic.PriceQuote{}, ErrMalformedQuote
	}

	updated := time.Now().UTC()
	if raw.Bitcoin.LastUpdatedAt > 0 {
		updated = time.Unix(raw.Bitcoin.LastUpdatedAt, 0).UTC()
	}
	return generic.PriceQuote{
		Price:       raw.Bitcoin.USD,
		Change24h:   raw.Bitcoin.USD24hChange.Round(4),
		LastUpdated: updated,
		Source:      sourceName,
	}, nil
}
