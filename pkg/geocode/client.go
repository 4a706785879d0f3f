// Package geocode resolves free-text event addresses to coordinates via
// OpenCage (default) or the Google Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Provider is a single geocoding backend queried by one-line address.
type Provider interface {
	// Name returns the provider identifier ("opencage", "google").
	Name() string

	// Available reports whether the provider is configured (e.g. has an API key).
	Available() bool

	// Geocode returns the best match for query. An unmatched query is not an
	// error: it returns a Result with Matched=false.
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the top-ranked geocoding match.
type Result struct {
	Latitude  float64
	Longitude float64
	Source    string
	Quality   string
	Matched   bool
}

// throttled is implemented by the HTTP providers. The Enricher takes a rate
// limit slot under the caller's context and bounds only the request itself
// with its timeout, so time spent queueing is never charged to the request.
type throttled interface {
	waitTurn(ctx context.Context) error
	lookup(ctx context.Context, query string) (*Result, error)
}

// Option configures an HTTP-backed provider.
type Option func(*settings)

type settings struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) {
		s.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(s *settings) {
		s.limiter = newLimiter(rps)
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}

func (s *settings) waitTurn(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func newSettings(opts []Option) settings {
	s := settings{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    newLimiter(1), // OpenCage free tier: 1 req/s
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
