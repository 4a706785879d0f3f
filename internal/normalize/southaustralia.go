package normalize

import (
	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/model"
)

// SouthAustralia adapts the state tourism "what's on" listing.
type SouthAustralia struct{}

func (SouthAustralia) Key() string              { return "southaustralia" }
func (SouthAustralia) Source() string           { return "SouthAustralia" }
func (SouthAustralia) KeyStyle() dedup.KeyStyle { return dedup.GenericKey }

func (s SouthAustralia) Normalize(raw model.RawEvent) model.Event {
	features, _ := raw.Strings("features")
	if features == nil {
		features = []string{}
	}
	return model.Event{
		Title:    model.Opt(raw.String("title")),
		Date:     model.Opt(raw.String("dates")),
		Time:     model.Opt(timeTBD),
		Location: model.Opt(raw.String("location")),
		Address:  model.Opt(raw.String("full_address")),
		Price:    model.Opt(raw.String("price")),
		Features: features,
		Category: "Tourism",
		Source:   s.Source(),
		Link:     model.Opt(raw.String("link")),
	}
}
