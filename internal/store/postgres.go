package store

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/events-cli/internal/db"
	"github.com/sells-group/events-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	table   string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. An empty table
// means DefaultTable.
func NewPostgres(ctx context.Context, connString, table string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, table: tableOrDefault(table), closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresEventsDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	source_link_hash TEXT PRIMARY KEY,
	title            TEXT,
	description      TEXT,
	date             TEXT,
	time             TEXT,
	location         TEXT,
	address          TEXT,
	lat              DOUBLE PRECISION,
	lng              DOUBLE PRECISION,
	price            TEXT,
	features         TEXT[] NOT NULL DEFAULT '{}',
	organiser        TEXT,
	category         TEXT NOT NULL,
	source           TEXT NOT NULL,
	link             TEXT,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(source);
`

const postgresRunsDDL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	sources     JSONB NOT NULL DEFAULT '[]',
	normalized  INTEGER NOT NULL DEFAULT 0,
	merged      INTEGER NOT NULL DEFAULT 0,
	output      TEXT NOT NULL DEFAULT '',
	loaded      BIGINT NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs(started_at DESC);
`

// Ping checks connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

// Migrate creates the events and run tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(postgresEventsDDL,
		sanitizeTable(s.table),
		pgx.Identifier{"idx_" + indexSafe(s.table) + "_source"}.Sanitize(),
	)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return eris.Wrap(err, "postgres: migrate events")
	}
	if _, err := s.pool.Exec(ctx, postgresRunsDDL); err != nil {
		return eris.Wrap(err, "postgres: migrate runs")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// UpsertEvents writes rows with a single COPY-backed upsert keyed on
// source_link_hash.
func (s *PostgresStore) UpsertEvents(ctx context.Context, rows []EventRow) (int64, error) {
	data := make([][]any, len(rows))
	for i, r := range rows {
		features := r.Features
		if features == nil {
			features = []string{}
		}
		data[i] = r.values(features)
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        s.table,
		Columns:      eventColumns,
		ConflictKeys: []string{"source_link_hash"},
	}, data)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert events")
	}
	return n, nil
}

func (s *PostgresStore) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+sanitizeTable(s.table)).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count events")
	}
	return n, nil
}

// RecordRun inserts or updates a run. A run without an ID is assigned one.
func (s *PostgresStore) RecordRun(ctx context.Context, run *model.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	sources, err := json.Marshal(sourcesOrEmpty(run.Sources))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal sources")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, status, sources, normalized, merged, output, loaded, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status, sources = EXCLUDED.sources,
			normalized = EXCLUDED.normalized, merged = EXCLUDED.merged,
			output = EXCLUDED.output, loaded = EXCLUDED.loaded,
			error = EXCLUDED.error, finished_at = EXCLUDED.finished_at`,
		run.ID, string(run.Status), sources, run.Normalized, run.Merged,
		run.Output, run.Loaded, run.Error, run.StartedAt, nullTime(run.FinishedAt),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: record run %s", run.ID)
	}
	return nil
}

const runColumns = `id, status, sources, normalized, merged, output, loaded, error, started_at, finished_at`

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, runID)
	r, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if !filter.StartedAfter.IsZero() {
		query += fmt.Sprintf(` AND started_at > $%d`, argIdx)
		args = append(args, filter.StartedAfter)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY started_at DESC LIMIT $%d`, argIdx)
	args = append(args, limitOrDefault(filter.Limit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}
