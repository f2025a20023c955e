// Package exchange fetches fiat conversion rates from exchangerate-api and
// caches them so the API surface never blocks on the upstream provider.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/depaym-network/depaym/internal/infra/observability"
)

const defaultBaseURL = "https://v6.exchangerate-api.com/v6"

// DefaultTTL is how long a cached rate table is served before a refresh
// is attempted.
const DefaultTTL = 3 * time.Hour

// Cache persists rate tables between fetches.
type Cache interface {
	CachedRates(base string) (map[string]float64, time.Time, error)
	PutCachedRates(base string, rates map[string]float64, at time.Time) error
}

// Client serves conversion rates for a base currency, refreshing from the
// upstream API when the cached table goes stale. A stale table is still
// served when the upstream is unreachable.
type Client struct {
	apiKey  string
	baseURL string
	ttl     time.Duration
	cache   Cache
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithHTTPClient overrides the HTTP client used for upstream calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(apiKey string, cache Cache, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		ttl:     DefaultTTL,
		cache:   cache,
		http:    &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetClock replaces the time source. Used in tests.
func (c *Client) SetClock(now func() time.Time) { c.now = now }

// Rates returns the conversion table for base. The cached table is served
// while fresh; past the TTL a refresh is attempted, and on upstream failure
// the stale table is returned rather than an error.
func (c *Client) Rates(ctx context.Context, base string) (map[string]float64, time.Time, error) {
	cached, fetchedAt, err := c.cache.CachedRates(base)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read rate cache: %w", err)
	}

	now := c.now()
	if cached != nil && now.Sub(fetchedAt) < c.ttl {
		observability.ExchangeRateCacheHits.Inc()
		return cached, fetchedAt, nil
	}

	rates, err := c.fetch(ctx, base)
	if err != nil {
		observability.ExchangeRateFetches.WithLabelValues("error").Inc()
		if cached != nil {
			log.Printf("exchange: refresh for %s failed, serving stale rates: %v", base, err)
			return cached, fetchedAt, nil
		}
		return nil, time.Time{}, err
	}
	observability.ExchangeRateFetches.WithLabelValues("ok").Inc()

	if err := c.cache.PutCachedRates(base, rates, now); err != nil {
		log.Printf("exchange: cache write for %s failed: %v", base, err)
	}
	return rates, now, nil
}

type ratesResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

func (c *Client) fetch(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch rates for %s: upstream status %d", base, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates for %s: %w", base, err)
	}
	if body.Result != "success" {
		return nil, fmt.Errorf("fetch rates for %s: upstream error %q", base, body.ErrorType)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("fetch rates for %s: empty conversion table", base)
	}
	return body.ConversionRates, nil
}
