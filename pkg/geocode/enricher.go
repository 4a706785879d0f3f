package geocode

import (
	"context"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// DefaultRegionSuffix disambiguates same-named streets and venues.
const DefaultRegionSuffix = ", South Australia"

// Coordinates is a lat/lng pair; both fields are nil when unresolved.
type Coordinates struct {
	Lat *float64
	Lng *float64
}

// Outcome classifies a single Enricher.Geocode call.
type Outcome string

const (
	OutcomeSkipped     Outcome = "skipped"     // empty address, no call made
	OutcomeUnavailable Outcome = "unavailable" // provider not configured
	OutcomeMatched     Outcome = "matched"
	OutcomeUnmatched   Outcome = "unmatched"
	OutcomeFailed      Outcome = "failed" // error, timeout or open circuit
)

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithRegionSuffix overrides the qualifier appended to every query.
func WithRegionSuffix(suffix string) EnricherOption {
	return func(e *Enricher) {
		e.suffix = suffix
	}
}

// WithTimeout bounds each provider call.
func WithTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithBreaker opens the circuit after n consecutive provider failures; while
// open, calls degrade immediately. n <= 0 disables the breaker.
func WithBreaker(n int, openFor time.Duration) EnricherOption {
	return func(e *Enricher) {
		e.breakerFailures = n
		e.breakerOpenFor = openFor
	}
}

// WithOutcomeHook registers a callback invoked once per Geocode call.
func WithOutcomeHook(fn func(Outcome)) EnricherOption {
	return func(e *Enricher) {
		e.onOutcome = fn
	}
}

// Enricher resolves addresses to coordinates and never fails: every error
// path degrades to empty Coordinates. It does not retry or cache.
type Enricher struct {
	provider        Provider
	suffix          string
	timeout         time.Duration
	breakerFailures int
	breakerOpenFor  time.Duration
	breaker         *gobreaker.CircuitBreaker[*Result]
	onOutcome       func(Outcome)
}

// NewEnricher wraps provider. A nil provider behaves like an unconfigured one.
func NewEnricher(provider Provider, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		provider:       provider,
		suffix:         DefaultRegionSuffix,
		timeout:        10 * time.Second,
		breakerOpenFor: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.breakerFailures > 0 {
		threshold := uint32(e.breakerFailures)
		e.breaker = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
			Name:        "geocode",
			MaxRequests: 1,
			Timeout:     e.breakerOpenFor,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				zap.L().Warn("geocode: circuit breaker state change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return e
}

// Geocode resolves address. Blank addresses return immediately without a
// provider call.
func (e *Enricher) Geocode(ctx context.Context, address string) Coordinates {
	address = strings.TrimSpace(address)
	if address == "" {
		e.observe(OutcomeSkipped)
		return Coordinates{}
	}
	if e.provider == nil || !e.provider.Available() {
		e.observe(OutcomeUnavailable)
		return Coordinates{}
	}

	log := zap.L().With(
		zap.String("provider", e.provider.Name()),
		zap.String("address", preview(address)),
	)

	query := address + e.suffix
	lookup := e.provider.Geocode
	if t, ok := e.provider.(throttled); ok {
		if err := t.waitTurn(ctx); err != nil {
			log.Warn("geocode: rate limit wait aborted", zap.Error(err))
			e.observe(OutcomeFailed)
			return Coordinates{}
		}
		lookup = t.lookup
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	call := func() (*Result, error) {
		return lookup(callCtx, query)
	}

	var (
		res *Result
		err error
	)
	if e.breaker != nil {
		res, err = e.breaker.Execute(call)
	} else {
		res, err = call()
	}

	if err != nil {
		log.Warn("geocode: lookup failed", zap.Error(err))
		e.observe(OutcomeFailed)
		return Coordinates{}
	}
	if res == nil || !res.Matched {
		log.Debug("geocode: no match")
		e.observe(OutcomeUnmatched)
		return Coordinates{}
	}

	lat, lng := res.Latitude, res.Longitude
	log.Debug("geocode: matched",
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.String("quality", res.Quality),
	)
	e.observe(OutcomeMatched)
	return Coordinates{Lat: &lat, Lng: &lng}
}

func (e *Enricher) observe(o Outcome) {
	if e.onOutcome != nil {
		e.onOutcome(o)
	}
}

// preview truncates long addresses for log output.
func preview(s string) string {
	r := []rune(s)
	if len(r) <= 50 {
		return s
	}
	return string(r[:50]) + "..."
}
