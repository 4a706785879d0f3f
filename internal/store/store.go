// Package store persists loaded events and the pipeline run log. Postgres is
// the production backend; SQLite serves local runs and tests.
package store

import (
	"context"
	"time"

	"github.com/sells-group/events-cli/internal/model"
)

// DefaultTable is the events table used when none is configured.
const DefaultTable = "events"

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	StartedAfter time.Time       `json:"started_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
}

// EventRow is one stored event. SourceLinkHash is the conflict key.
type EventRow struct {
	model.Event
	SourceLinkHash string `json:"source_link_hash"`
}

// NewEventRow builds a row from ev, computing its identity hash.
func NewEventRow(ev model.Event) EventRow {
	return EventRow{Event: ev, SourceLinkHash: ev.IdentityHash()}
}

// eventColumns is the column order used by every backend.
var eventColumns = []string{
	"source_link_hash",
	"title", "description", "date", "time",
	"location", "address", "lat", "lng",
	"price", "features", "organiser",
	"category", "source", "link",
}

// values returns the row in eventColumns order. features is passed through
// as given so each backend can encode it.
func (r EventRow) values(features any) []any {
	return []any{
		r.SourceLinkHash,
		r.Title, r.Description, r.Date, r.Time,
		r.Location, r.Address, r.Lat, r.Lng,
		r.Price, features, r.Organiser,
		r.Category, r.Source, r.Link,
	}
}

// Store defines the persistence interface for the events pipeline.
type Store interface {
	// Events
	UpsertEvents(ctx context.Context, rows []EventRow) (int64, error)
	CountEvents(ctx context.Context) (int64, error)

	// Runs
	RecordRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func tableOrDefault(table string) string {
	if table == "" {
		return DefaultTable
	}
	return table
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return 100
	}
	return n
}
