package model

import "strings"

// Event is the canonical representation every source is normalized into.
// Lat and Lng are either both set or both nil; use SetCoordinates to assign them.
type Event struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Time        *string  `json:"time"`
	Location    *string  `json:"location"`
	Address     *string  `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Price       *string  `json:"price"`
	Features    []string `json:"features"`
	Organiser   *string  `json:"organiser"`
	Category    string   `json:"category"`
	Source      string   `json:"source"`
	Link        *string  `json:"link"`
}

// SetCoordinates assigns lat/lng as a pair. If either is nil both are cleared.
func (e *Event) SetCoordinates(lat, lng *float64) {
	if lat == nil || lng == nil {
		e.Lat, e.Lng = nil, nil
		return
	}
	la, ln := *lat, *lng
	e.Lat, e.Lng = &la, &ln
}

// HasCoordinates reports whether the event was geocoded.
func (e Event) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

// GeocodeQuery returns the text used to geocode the event: the street
// address when present, otherwise the venue/location string.
func (e Event) GeocodeQuery() string {
	if a := strings.TrimSpace(Str(e.Address)); a != "" {
		return a
	}
	return strings.TrimSpace(Str(e.Location))
}

// Clone returns a copy that shares no mutable state with e.
func (e Event) Clone() Event {
	out := e
	out.Features = append([]string{}, e.Features...)
	return out
}

// Opt returns a pointer to s, or nil when s is empty.
func Opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Str dereferences p, returning "" for nil.
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
