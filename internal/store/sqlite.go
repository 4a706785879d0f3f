package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/events-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// An empty table means DefaultTable.
func NewSQLite(dsn, table string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, table: tableOrDefault(table)}, nil
}

const sqliteEventsDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	source_link_hash TEXT PRIMARY KEY,
	title            TEXT,
	description      TEXT,
	date             TEXT,
	time             TEXT,
	location         TEXT,
	address          TEXT,
	lat              REAL,
	lng              REAL,
	price            TEXT,
	features         TEXT NOT NULL DEFAULT '[]',
	organiser        TEXT,
	category         TEXT NOT NULL,
	source           TEXT NOT NULL,
	link             TEXT,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(source);
`

const sqliteRunsDDL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	sources     TEXT NOT NULL DEFAULT '[]',
	normalized  INTEGER NOT NULL DEFAULT 0,
	merged      INTEGER NOT NULL DEFAULT 0,
	output      TEXT NOT NULL DEFAULT '',
	loaded      INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(sqliteEventsDDL,
		sanitizeTable(s.table),
		sanitizeTable("idx_"+indexSafe(s.table)+"_source"),
	)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return eris.Wrap(err, "sqlite: migrate events")
	}
	_, err := s.db.ExecContext(ctx, sqliteRunsDDL)
	return eris.Wrap(err, "sqlite: migrate runs")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertEvents writes rows in one transaction. Features are stored as a JSON
// array.
func (s *SQLiteStore) UpsertEvents(ctx context.Context, rows []EventRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteUpsertSQL(s.table))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	var affected int64
	for _, r := range rows {
		features, err := json.Marshal(featuresOrEmpty(r.Features))
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal features")
		}
		res, err := stmt.ExecContext(ctx, r.values(string(features))...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert event %s", r.SourceLinkHash)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return affected, nil
}

func sqliteUpsertSQL(table string) string {
	cols := quoteAndJoinCols(eventColumns)
	placeholders := "?"
	for i := 1; i < len(eventColumns); i++ {
		placeholders += ", ?"
	}
	set := ""
	for _, c := range eventColumns[1:] {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%[1]s = excluded.%[1]s", sanitizeTable(c))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(source_link_hash) DO UPDATE SET %s, updated_at = datetime('now')",
		sanitizeTable(table), cols, placeholders, set,
	)
}

func (s *SQLiteStore) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+sanitizeTable(s.table)).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count events")
}

// RecordRun inserts or updates a run. A run without an ID is assigned one.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	sources, err := json.Marshal(sourcesOrEmpty(run.Sources))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal sources")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, status, sources, normalized, merged, output, loaded, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status, sources = excluded.sources,
			normalized = excluded.normalized, merged = excluded.merged,
			output = excluded.output, loaded = excluded.loaded,
			error = excluded.error, finished_at = excluded.finished_at`,
		run.ID, string(run.Status), string(sources), run.Normalized, run.Merged,
		run.Output, run.Loaded, run.Error, run.StartedAt.UTC(), nullTime(run.FinishedAt.UTC()),
	)
	return eris.Wrapf(err, "sqlite: record run %s", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.StartedAfter.IsZero() {
		query += ` AND started_at > ?`
		args = append(args, filter.StartedAfter.UTC())
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func featuresOrEmpty(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}

func quoteAndJoinCols(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += sanitizeTable(c)
	}
	return out
}
