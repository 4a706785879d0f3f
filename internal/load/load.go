// Package load pushes normalized events into a store: rows are filtered,
// de-duplicated by identity hash and by a coordinate fingerprint, then
// upserted in batches.
package load

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/store"
)

// DefaultBatchSize is the number of rows sent per upsert.
const DefaultBatchSize = 500

// Upserter is the store subset the loader needs.
type Upserter interface {
	UpsertEvents(ctx context.Context, rows []store.EventRow) (int64, error)
}

// Options tunes the loader.
type Options struct {
	BatchSize          int
	RequireCoordinates bool
}

// Stats reports what Prepare kept and dropped.
type Stats struct {
	Input         int   `json:"input"`
	NoCoordinates int   `json:"no_coordinates"`
	DuplicateHash int   `json:"duplicate_hash"`
	Collapsed     int   `json:"collapsed"`
	Rows          int   `json:"rows"`
	Batches       int   `json:"batches"`
	Upserted      int64 `json:"upserted"`
}

// Loader upserts events through an Upserter.
type Loader struct {
	store Upserter
	opts  Options
}

// New creates a Loader. A non-positive batch size means DefaultBatchSize.
func New(st Upserter, opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Loader{store: st, opts: opts}
}

// ReadEvents reads a normalized events file.
func ReadEvents(path string) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "load: read %s", path)
	}
	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, eris.Wrapf(err, "load: decode %s", path)
	}
	return events, nil
}

// Prepare converts events to rows, keeping the first row per identity hash
// and then the first row per (title, date, rounded coordinates) fingerprint.
func Prepare(events []model.Event, requireCoordinates bool) ([]store.EventRow, Stats) {
	stats := Stats{Input: len(events)}

	seenHash := make(map[string]bool, len(events))
	byHash := make([]store.EventRow, 0, len(events))
	for _, ev := range events {
		if requireCoordinates && !ev.HasCoordinates() {
			stats.NoCoordinates++
			continue
		}
		row := store.NewEventRow(ev)
		if seenHash[row.SourceLinkHash] {
			stats.DuplicateHash++
			continue
		}
		seenHash[row.SourceLinkHash] = true
		byHash = append(byHash, row)
	}

	seenCanon := make(map[string]bool, len(byHash))
	rows := make([]store.EventRow, 0, len(byHash))
	for _, row := range byHash {
		key := FingerprintKey(row.Event)
		if seenCanon[key] {
			stats.Collapsed++
			continue
		}
		seenCanon[key] = true
		rows = append(rows, row)
	}
	stats.Rows = len(rows)
	return rows, stats
}

// FingerprintKey is lower(trim(title))|lower(trim(date))|lat|lng with
// coordinates rounded to 4 decimal places (about 11 m).
func FingerprintKey(ev model.Event) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(model.Str(ev.Title))),
		strings.ToLower(strings.TrimSpace(model.Str(ev.Date))),
		round4(ev.Lat),
		round4(ev.Lng),
	}, "|")
}

func round4(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(math.Round(*v*1e4)/1e4, 'f', -1, 64)
}

// Load prepares events and upserts them in batches. The first failing batch
// aborts the load; batches already written stay written.
func (l *Loader) Load(ctx context.Context, events []model.Event) (Stats, error) {
	rows, stats := Prepare(events, l.opts.RequireCoordinates)

	for start := 0; start < len(rows); start += l.opts.BatchSize {
		end := min(start+l.opts.BatchSize, len(rows))
		n, err := l.store.UpsertEvents(ctx, rows[start:end])
		if err != nil {
			return stats, eris.Wrapf(err, "load: upsert batch %d", stats.Batches+1)
		}
		stats.Batches++
		stats.Upserted += n
		zap.L().Debug("load: batch upserted",
			zap.Int("batch", stats.Batches),
			zap.Int("rows", end-start),
		)
	}

	zap.L().Info("load: complete",
		zap.Int("input", stats.Input),
		zap.Int("no_coordinates", stats.NoCoordinates),
		zap.Int("duplicate_hash", stats.DuplicateHash),
		zap.Int("collapsed", stats.Collapsed),
		zap.Int("rows", stats.Rows),
		zap.Int64("upserted", stats.Upserted),
	)
	return stats, nil
}
