package dedup

import (
	"strings"

	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/parse"
)

// KeyStyle selects how a source's raw records are fingerprinted.
type KeyStyle int

const (
	// GenericKey handles sources with title/location/date under varying names.
	GenericKey KeyStyle = iota
	// VenueKey is for sources exposing an explicit venue field (ticketing APIs).
	VenueKey
	// LocationBlockKey is for sources with a multi-line Location block and a
	// combined "Date & Time" string.
	LocationBlockKey
)

// String returns the style name.
func (s KeyStyle) String() string {
	switch s {
	case GenericKey:
		return "generic"
	case VenueKey:
		return "venue"
	case LocationBlockKey:
		return "location_block"
	default:
		return "unknown"
	}
}

// Raw drops records whose raw fingerprint was already seen. The first
// occurrence wins and input order is preserved.
func Raw(records []model.RawEvent, style KeyStyle) []model.RawEvent {
	seen := make(map[Fingerprint]struct{}, len(records))
	out := make([]model.RawEvent, 0, len(records))
	for _, r := range records {
		key := RawKey(r, style)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RawKey computes the fingerprint of a raw record.
func RawKey(r model.RawEvent, style KeyStyle) Fingerprint {
	switch style {
	case VenueKey:
		return Fingerprint{
			Title:    strings.ToLower(r.String("title")),
			Location: strings.ToLower(r.String("venue")),
			Date:     parse.Truncate(r.String("date"), 10),
		}
	case LocationBlockKey:
		date, _ := parse.Head(r.String("Date & Time"), parse.DateTimeDelimiter)
		return Fingerprint{
			Title:    strings.ToLower(r.String("Title")),
			Location: strings.ToLower(parse.VenueLine(r.String("Location"))),
			Date:     date,
		}
	default:
		return genericKey(r)
	}
}

func genericKey(r model.RawEvent) Fingerprint {
	var location string
	if parts, isList := r.Strings("address"); isList {
		location = strings.Join(parts, ", ")
	} else {
		location = r.First("location", "venue", "address")
	}

	var date string
	if obj, isObj := r.Object("date"); isObj {
		date = obj.String("start_date")
	} else {
		date = r.First("date", "dates", "Date & Time")
	}

	return Fingerprint{
		Title:    strings.ToLower(r.First("title", "Title")),
		Location: strings.ToLower(location),
		Date:     date,
	}
}
