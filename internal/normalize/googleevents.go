package normalize

import (
	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
)

// GoogleEvents adapts search-aggregator results: a nested date object and
// an address given as a list of lines.
type GoogleEvents struct{}

func (GoogleEvents) Key() string              { return "google_events" }
func (GoogleEvents) Source() string           { return "GoogleEvents" }
func (GoogleEvents) KeyStyle() dedup.KeyStyle { return dedup.GenericKey }

func (g GoogleEvents) Normalize(raw model.RawEvent) model.Event {
	ev := model.Event{
		Title:       model.Opt(raw.String("title")),
		Description: model.Opt(raw.String("description")),
		Features:    []string{},
		Category:    categoryGeneral,
		Source:      g.Source(),
		Link:        model.Opt(raw.String("link")),
	}

	if date, ok := raw.Object("date"); ok {
		ev.Date = model.Opt(date.String("start_date"))
		ev.Time = model.Opt(date.String("when"))
	}

	if lines, ok := raw.Strings("address"); ok && len(lines) > 0 {
		ev.Location = model.Opt(lines[0])
	}
	if joined, ok := raw.JoinedAddress("address"); ok {
		ev.Address = model.Opt(joined)
	}
	return ev
}
