package normalize

import (
	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/parse"
)

// Eventbrite adapts search-result cards: a combined "Date & Time" string and
// a multi-line "Location" block.
type Eventbrite struct{}

func (Eventbrite) Key() string              { return "eventbrite" }
func (Eventbrite) Source() string           { return "Eventbrite" }
func (Eventbrite) KeyStyle() dedup.KeyStyle { return dedup.LocationBlockKey }

func (e Eventbrite) Normalize(raw model.RawEvent) model.Event {
	dt := parse.SplitDateTime(raw.String("Date & Time"))
	loc := parse.SplitLocationBlock(raw.String("Location"))

	return model.Event{
		Title:     model.Opt(raw.String("Title")),
		Date:      model.Opt(dt.Date),
		Time:      model.Opt(dt.Time),
		Location:  model.Opt(loc.Venue),
		Address:   model.Opt(loc.Address),
		Features:  []string{},
		Organiser: model.Opt(raw.String("Organizer")),
		Category:  orDefault(raw.String("Category"), categoryGeneral),
		Source:    e.Source(),
		Link:      model.Opt(raw.String("URL")),
	}
}
