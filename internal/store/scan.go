package store

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/events-cli/internal/model"
)

type scannable interface {
	Scan(dest ...any) error
}

// scanRun reads a row in runColumns order.
func scanRun(row scannable) (*model.Run, error) {
	var (
		r          model.Run
		status     string
		sources    []byte
		finishedAt *time.Time
	)
	if err := row.Scan(&r.ID, &status, &sources, &r.Normalized, &r.Merged,
		&r.Output, &r.Loaded, &r.Error, &r.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	if finishedAt != nil {
		r.FinishedAt = *finishedAt
	}

	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &r.Sources); err != nil {
			return nil, eris.Wrap(err, "unmarshal sources")
		}
	}
	return &r, nil
}

func sourcesOrEmpty(s []model.SourceStats) []model.SourceStats {
	if s == nil {
		return []model.SourceStats{}
	}
	return s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// sanitizeTable quotes a possibly schema-qualified table name.
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	return pgx.Identifier(parts).Sanitize()
}

func indexSafe(table string) string {
	return strings.ReplaceAll(table, ".", "_")
}
