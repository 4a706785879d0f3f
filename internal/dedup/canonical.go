package dedup

import (
	"strings"

	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/parse"
)

// MultipleTimesSuffix is appended to a surviving event's time when a
// duplicate reports a different time.
const MultipleTimesSuffix = " (Multiple times available)"

const multipleTimesMarker = "Multiple times"

// CanonicalKey fingerprints a normalized event: lower-cased trimmed title,
// location (falling back to address), and the first 10 characters of date.
func CanonicalKey(e model.Event) Fingerprint {
	loc := model.Str(e.Location)
	if loc == "" {
		loc = model.Str(e.Address)
	}
	return Fingerprint{
		Title:    lowerTrim(model.Str(e.Title)),
		Location: lowerTrim(loc),
		Date:     parse.Truncate(model.Str(e.Date), 10),
	}
}

// Canonical collapses events sharing a CanonicalKey. The first occurrence
// keeps its position and absorbs later duplicates via Merge. The input
// slice is not modified.
func Canonical(events []model.Event) []model.Event {
	index := make(map[Fingerprint]int, len(events))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		key := CanonicalKey(ev)
		if i, ok := index[key]; ok {
			out[i] = Merge(out[i], ev)
			continue
		}
		index[key] = len(out)
		out = append(out, ev.Clone())
	}
	return out
}

// Merge folds dup into base and returns the result. Only time, description
// and organiser are taken from dup. Coordinates, address, category and all
// other fields stay as base has them, so the first source processed decides
// them for the merged event.
func Merge(base, dup model.Event) model.Event {
	out := base.Clone()

	if t := model.Str(dup.Time); t != "" && t != model.Str(base.Time) {
		switch {
		case base.Time == nil || *base.Time == "":
			out.Time = model.Opt(t)
		case !strings.Contains(*base.Time, multipleTimesMarker):
			out.Time = model.Opt(*base.Time + MultipleTimesSuffix)
		}
	}
	if model.Str(base.Description) == "" && model.Str(dup.Description) != "" {
		out.Description = dup.Description
	}
	if model.Str(base.Organiser) == "" && model.Str(dup.Organiser) != "" {
		out.Organiser = dup.Organiser
	}
	return out
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
