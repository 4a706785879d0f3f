package normalize

import (
	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
)

// AdelaideFestival adapts the festival centre's program listing.
type AdelaideFestival struct{}

func (AdelaideFestival) Key() string              { return "adelaidefestival" }
func (AdelaideFestival) Source() string           { return "AdelaideFestival" }
func (AdelaideFestival) KeyStyle() dedup.KeyStyle { return dedup.GenericKey }

func (a AdelaideFestival) Normalize(raw model.RawEvent) model.Event {
	return model.Event{
		Title:       model.Opt(raw.String("title")),
		Description: model.Opt(raw.String("description")),
		Date:        model.Opt(raw.String("date")),
		Time:        model.Opt(timeTBD),
		Address:     model.Opt(raw.String("address")),
		Features:    []string{},
		Organiser:   model.Opt("Adelaide Festival Centre"),
		Category:    "Festival/Arts",
		Source:      a.Source(),
		Link:        model.Opt(raw.String("link")),
	}
}
