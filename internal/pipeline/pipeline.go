// Package pipeline runs one normalization pass: read every source's raw file,
// de-duplicate within the source, normalize and geocode each record, merge
// cross-source duplicates and write the combined output file.
package pipeline

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/events-cli/internal/dedup"
	"github.com/sells-group/events-cli/internal/metrics"
	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/normalize"
)

// Config controls where the pipeline reads and writes and how hard it
// drives the geocoder.
type Config struct {
	DataDir       string
	OutputFile    string
	Concurrency   int
	ProgressEvery int
}

// OutputPath resolves OutputFile; relative paths live under DataDir.
func (c Config) OutputPath() string {
	if filepath.IsAbs(c.OutputFile) {
		return c.OutputFile
	}
	return filepath.Join(c.DataDir, c.OutputFile)
}

// SourcePath returns the raw input file for a source key.
func (c Config) SourcePath(key string) string {
	return filepath.Join(c.DataDir, key+".json")
}

// Result is the output of a pipeline run.
type Result struct {
	Run    *model.Run
	Events []model.Event
}

// Pipeline wires the registry, geocoder and metrics together.
type Pipeline struct {
	cfg      Config
	registry *normalize.Registry
	geocoder normalize.Geocoder
	metrics  *metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records run counters on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline.
func New(cfg Config, reg *normalize.Registry, geocoder normalize.Geocoder, opts ...Option) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 5
	}
	p := &Pipeline{cfg: cfg, registry: reg, geocoder: geocoder}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes the named sources (all registered sources when names is
// empty) in registration order. A missing or malformed source file is logged
// and skipped. Only an unknown source name, a cancelled context or an output
// write failure abort the run.
func (p *Pipeline) Run(ctx context.Context, names []string) (*Result, error) {
	adapters, err := p.registry.Select(names)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select sources")
	}

	run := &model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting", zap.Int("sources", len(adapters)))

	var all []model.Event
	for _, a := range adapters {
		events, stats := p.processSource(ctx, a)
		run.Sources = append(run.Sources, stats)
		all = append(all, events...)

		if err := ctx.Err(); err != nil {
			return p.fail(run, eris.Wrap(err, "pipeline: cancelled"))
		}
	}

	merged := dedup.Canonical(all)
	run.Merged = len(all) - len(merged)
	run.Normalized = len(merged)
	run.Output = p.cfg.OutputPath()

	if err := WriteEvents(run.Output, merged); err != nil {
		return p.fail(run, err)
	}

	run.Status = model.RunStatusComplete
	run.FinishedAt = time.Now().UTC()
	if p.metrics != nil {
		p.metrics.MergedDupes.Add(float64(run.Merged))
		p.metrics.OutputRecords.Set(float64(run.Normalized))
		p.metrics.RunDuration.Set(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}

	log.Info("pipeline: complete",
		zap.Int("input", len(all)),
		zap.Int("merged", run.Merged),
		zap.Int("output", run.Normalized),
		zap.String("path", run.Output),
	)
	return &Result{Run: run, Events: merged}, nil
}

func (p *Pipeline) fail(run *model.Run, err error) (*Result, error) {
	run.Status = model.RunStatusFailed
	run.Error = err.Error()
	run.FinishedAt = time.Now().UTC()
	return &Result{Run: run}, err
}

// processSource reads, de-duplicates and enriches one source.
func (p *Pipeline) processSource(ctx context.Context, a normalize.Adapter) ([]model.Event, model.SourceStats) {
	stats := model.SourceStats{Source: a.Key()}
	log := zap.L().With(zap.String("source", a.Key()))

	path := p.cfg.SourcePath(a.Key())
	records, err := ReadSource(path)
	if err != nil {
		log.Warn("pipeline: skipping source", zap.String("path", path), zap.Error(err))
		stats.Skipped = true
		stats.Reason = err.Error()
		if p.metrics != nil {
			p.metrics.SkippedSources.WithLabelValues(a.Key()).Inc()
		}
		return nil, stats
	}

	unique := dedup.Raw(records, a.KeyStyle())
	stats.RawRecords = len(records)
	stats.UniqueRaw = len(unique)
	if p.metrics != nil {
		p.metrics.RawRecords.WithLabelValues(a.Key()).Add(float64(len(records)))
		p.metrics.RawDuplicates.WithLabelValues(a.Key()).Add(float64(len(records) - len(unique)))
	}
	log.Info("pipeline: source loaded",
		zap.Int("raw", len(records)),
		zap.Int("unique", len(unique)),
	)

	events := p.enrichAll(ctx, a, unique, log)
	for _, ev := range events {
		if ev.HasCoordinates() {
			stats.Geocoded++
		}
	}
	return events, stats
}

// enrichAll normalizes and geocodes records with at most cfg.Concurrency
// lookups in flight. Output order matches input order.
func (p *Pipeline) enrichAll(ctx context.Context, a normalize.Adapter, records []model.RawEvent, log *zap.Logger) []model.Event {
	out := make([]model.Event, len(records))
	total := len(records)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, raw := range records {
		g.Go(func() error {
			out[i] = normalize.Enrich(ctx, a, p.geocoder, raw)
			if n := done.Add(1); n%int64(p.cfg.ProgressEvery) == 0 || int(n) == total {
				log.Info("pipeline: geocoding progress",
					zap.Int64("done", n),
					zap.Int("total", total),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
