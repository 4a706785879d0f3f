package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/events-cli/internal/model"
)

func f64(v float64) *float64 { return &v }

func ev(title, date, location string) model.Event {
	return model.Event{
		Title:    model.Opt(title),
		Date:     model.Opt(date),
		Location: model.Opt(location),
		Features: []string{},
	}
}

func TestCanonicalKey(t *testing.T) {
	e := model.Event{
		Title:   model.Opt("  Adelaide Fringe Gala "),
		Address: model.Opt(" Town Hall "),
		Date:    model.Opt("2025-03-01T19:30:00"),
	}
	assert.Equal(t, Fingerprint{Title: "adelaide fringe gala", Location: "town hall", Date: "2025-03-01"}, CanonicalKey(e))
}

func TestCanonical_OrganiserBackfill(t *testing.T) {
	a := ev("Adelaide Fringe Gala", "2025-03-01", "Garden of Unearthly Delights")
	a.Source = "GoogleEvents"
	b := ev("Adelaide Fringe Gala", "2025-03-01", "Garden of Unearthly Delights")
	b.Source = "Ticketmaster"
	b.Organiser = model.Opt("Fringe Co")

	out := Canonical([]model.Event{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "Fringe Co", model.Str(out[0].Organiser))
	assert.Equal(t, "GoogleEvents", out[0].Source)
}

func TestCanonical_MultipleTimes(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Time = model.Opt("7pm")
	b := ev("Show", "2025-03-01", "Arena")
	b.Time = model.Opt("9pm")
	c := ev("Show", "2025-03-01", "Arena")
	c.Time = model.Opt("11pm")

	out := Canonical([]model.Event{a, b, c})
	require.Len(t, out, 1)
	assert.Equal(t, "7pm (Multiple times available)", model.Str(out[0].Time))
}

func TestMerge_SameTimeUnchanged(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Time = model.Opt("7pm")
	b := a.Clone()

	assert.Equal(t, "7pm", model.Str(Merge(a, b).Time))
}

func TestMerge_MissingBaseTimeIsBackfilled(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	b := ev("Show", "2025-03-01", "Arena")
	b.Time = model.Opt("9pm")

	assert.Equal(t, "9pm", model.Str(Merge(a, b).Time))
}

func TestMerge_DescriptionBackfillOnlyWhenMissing(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Description = model.Opt("first")
	b := ev("Show", "2025-03-01", "Arena")
	b.Description = model.Opt("second")
	assert.Equal(t, "first", model.Str(Merge(a, b).Description))

	a.Description = nil
	assert.Equal(t, "second", model.Str(Merge(a, b).Description))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Time = model.Opt("7pm")
	b := ev("Show", "2025-03-01", "Arena")
	b.Time = model.Opt("9pm")
	b.Organiser = model.Opt("Org")

	_ = Merge(a, b)
	assert.Equal(t, "7pm", model.Str(a.Time))
	assert.Nil(t, a.Organiser)
}

// The merge deliberately freezes coordinates, address and category to the
// first occurrence even when it has none and the duplicate does. This pins
// documented behaviour; it is not a reconciliation bug to be fixed here.
func TestMerge_FrozenFieldsNeverBackfilled(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Category = "General"
	a.Source = "GoogleEvents"

	b := ev("Show", "2025-03-01", "Arena")
	b.Category = "Entertainment"
	b.Source = "Ticketmaster"
	b.Address = model.Opt("1 Arena Rd")
	b.Price = model.Opt("$50")
	b.Link = model.Opt("https://t.example/1")
	b.Features = []string{"Accessible"}
	b.SetCoordinates(f64(-34.9), f64(138.6))

	out := Merge(a, b)
	assert.Nil(t, out.Lat)
	assert.Nil(t, out.Lng)
	assert.Nil(t, out.Address)
	assert.Nil(t, out.Price)
	assert.Nil(t, out.Link)
	assert.Empty(t, out.Features)
	assert.Equal(t, "General", out.Category)
	assert.Equal(t, "GoogleEvents", out.Source)
}

func TestCanonical_LocationFallsBackToAddress(t *testing.T) {
	a := model.Event{Title: model.Opt("Gig"), Address: model.Opt("1 Main St"), Date: model.Opt("2025-03-01")}
	b := model.Event{Title: model.Opt("GIG"), Location: model.Opt("1 main st"), Date: model.Opt("2025-03-01 20:00")}

	out := Canonical([]model.Event{a, b})
	assert.Len(t, out, 1)
}

func TestCanonical_OrderPreserved(t *testing.T) {
	in := []model.Event{
		ev("B", "2025-01-01", "x"),
		ev("A", "2025-01-01", "x"),
		ev("b", "2025-01-01", "X"),
		ev("C", "2025-01-01", "x"),
	}
	out := Canonical(in)
	require.Len(t, out, 3)
	assert.Equal(t, "B", model.Str(out[0].Title))
	assert.Equal(t, "A", model.Str(out[1].Title))
	assert.Equal(t, "C", model.Str(out[2].Title))
}

func TestCanonical_Idempotent(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Time = model.Opt("7pm")
	b := ev("Show", "2025-03-01", "Arena")
	b.Time = model.Opt("9pm")
	b.Description = model.Opt("desc")
	c := ev("Other", "2025-03-02", "Hall")

	once := Canonical([]model.Event{a, b, c})
	twice := Canonical(once)
	assert.Equal(t, once, twice)
}

func TestCanonical_InputNotModified(t *testing.T) {
	a := ev("Show", "2025-03-01", "Arena")
	a.Time = model.Opt("7pm")
	b := ev("Show", "2025-03-01", "Arena")
	b.Time = model.Opt("9pm")
	in := []model.Event{a, b}

	_ = Canonical(in)
	assert.Equal(t, "7pm", model.Str(in[0].Time))
}
