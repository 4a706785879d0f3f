// Package normalize maps each source's raw listings onto model.Event. Every
// source implements Adapter and is registered in a Registry; adding a source
// means adding one adapter file and one Register call.
package normalize

import (
	"context"

	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/pkg/geocode"
)

// Adapter maps one source's raw schema to the canonical schema.
type Adapter interface {
	// Key returns the registry key, which is also the input file stem
	// (e.g. "eventbrite" reads eventbrite.json).
	Key() string

	// Source returns the provenance value written to Event.Source.
	Source() string

	// KeyStyle selects the raw fingerprint used before geocoding.
	KeyStyle() dedup.KeyStyle

	// Normalize maps a raw record. It must not panic on missing or
	// mistyped fields and must not perform I/O.
	Normalize(raw model.RawEvent) model.Event
}

// Geocoder resolves an address to coordinates without failing.
type Geocoder interface {
	Geocode(ctx context.Context, address string) geocode.Coordinates
}

// Enrich normalizes raw with a and geocodes the result exactly once, using
// the address or, when absent, the location string.
func Enrich(ctx context.Context, a Adapter, g Geocoder, raw model.RawEvent) model.Event {
	ev := a.Normalize(raw)
	if ev.Features == nil {
		ev.Features = []string{}
	}
	if ev.Source == "" {
		ev.Source = a.Source()
	}

	c := g.Geocode(ctx, ev.GeocodeQuery())
	ev.SetCoordinates(c.Lat, c.Lng)
	return ev
}
