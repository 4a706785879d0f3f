package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/events-cli/internal/metrics"
	"github.com/sells-group/events-cli/internal/normalize"
	"github.com/sells-group/events-cli/internal/pipeline"
	"github.com/sells-group/events-cli/internal/store"
	"github.com/sells-group/events-cli/pkg/geocode"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "events.db"
		}
		return store.NewSQLite(dsn, cfg.Store.Table)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Table, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initGeocoder builds the configured provider behind an Enricher. A provider
// without credentials is kept; the Enricher then skips every lookup.
func initGeocoder(rec *metrics.Recorder) (*geocode.Enricher, error) {
	gc := cfg.Geocode
	timeout := time.Duration(gc.TimeoutSecs) * time.Second

	provider, err := geocode.NewProvider(gc.Provider, gc.APIKey(),
		geocode.WithHTTPClient(&http.Client{Timeout: timeout}),
		geocode.WithRateLimit(gc.RateLimit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "init geocoder")
	}
	if !provider.Available() {
		zap.L().Warn("geocoding disabled: no API key configured",
			zap.String("provider", provider.Name()),
		)
	}

	opts := []geocode.EnricherOption{
		geocode.WithRegionSuffix(gc.RegionSuffix),
		geocode.WithTimeout(timeout),
		geocode.WithBreaker(gc.BreakerFailures, time.Duration(gc.BreakerOpenSecs)*time.Second),
	}
	if rec != nil {
		opts = append(opts, geocode.WithOutcomeHook(rec.ObserveGeocode))
	}
	return geocode.NewEnricher(provider, opts...), nil
}

// newPipeline wires the registry, geocoder and metrics for a normalize pass.
func newPipeline(rec *metrics.Recorder) (*pipeline.Pipeline, error) {
	enricher, err := initGeocoder(rec)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipelineConfig(), normalize.DefaultRegistry(), enricher, pipeline.WithMetrics(rec)), nil
}

func pipelineConfig() pipeline.Config {
	return pipeline.Config{
		DataDir:       cfg.Pipeline.DataDir,
		OutputFile:    cfg.Pipeline.OutputFile,
		Concurrency:   cfg.Geocode.Concurrency,
		ProgressEvery: cfg.Pipeline.ProgressEvery,
	}
}

// writeMetrics exports run counters when a textfile path is configured.
func writeMetrics(rec *metrics.Recorder) {
	if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		zap.L().Warn("metrics: export failed", zap.Error(err))
	}
}
