package normalize

import (
	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/parse"
)

// descriptionSegmentMin is the length above which a pipe-annotated
// description is cut to its first segment.
const descriptionSegmentMin = 200

// Ticketmaster adapts Discovery API records with an explicit venue field.
type Ticketmaster struct{}

func (Ticketmaster) Key() string              { return "ticketmaster" }
func (Ticketmaster) Source() string           { return "Ticketmaster" }
func (Ticketmaster) KeyStyle() dedup.KeyStyle { return dedup.VenueKey }

func (t Ticketmaster) Normalize(raw model.RawEvent) model.Event {
	return model.Event{
		Title:       model.Opt(raw.String("title")),
		Description: model.Opt(parse.FirstSegment(raw.String("description"), descriptionSegmentMin)),
		Date:        model.Opt(raw.String("date")),
		Time:        model.Opt(raw.String("time")),
		Location:    model.Opt(raw.String("venue")),
		Address:     model.Opt(raw.String("location")),
		Price:       model.Opt(raw.String("price_range")),
		Features:    []string{},
		Organiser:   model.Opt(parse.FirstSegment(raw.String("organizer"), 0)),
		Category:    orDefault(raw.String("category"), "Entertainment"),
		Source:      t.Source(),
		Link:        model.Opt(raw.String("link")),
	}
}
