// Package metrics holds the Prometheus counters for one pipeline run.
// A Recorder owns its own registry so runs and tests never share state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"

	"github.com/sells-group/events-cli/pkg/geocode"
)

// Recorder collects run counters.
type Recorder struct {
	reg *prometheus.Registry

	RawRecords      *prometheus.CounterVec
	RawDuplicates   *prometheus.CounterVec
	SkippedSources  *prometheus.CounterVec
	GeocodeOutcomes *prometheus.CounterVec
	MergedDupes     prometheus.Counter
	OutputRecords   prometheus.Gauge
	LoadedRows      prometheus.Counter
	RunDuration     prometheus.Gauge
}

// New creates a Recorder with all counters registered.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		RawRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_raw_records_total",
			Help: "Raw records read per source",
		}, []string{"source"}),
		RawDuplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_raw_duplicates_total",
			Help: "Raw records dropped as within-source duplicates",
		}, []string{"source"}),
		SkippedSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_skipped_sources_total",
			Help: "Sources skipped because their input was missing or malformed",
		}, []string{"source"}),
		GeocodeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_geocode_outcomes_total",
			Help: "Geocode lookups by outcome",
		}, []string{"outcome"}),
		MergedDupes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "events_merged_duplicates_total",
			Help: "Events folded into an earlier event by cross-source dedup",
		}),
		OutputRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "events_output_records",
			Help: "Events written to the output file",
		}),
		LoadedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "events_loaded_rows_total",
			Help: "Rows upserted into the store",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "events_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	r.reg.MustRegister(
		r.RawRecords, r.RawDuplicates, r.SkippedSources, r.GeocodeOutcomes,
		r.MergedDupes, r.OutputRecords, r.LoadedRows, r.RunDuration,
	)
	return r
}

// ObserveGeocode counts a geocode outcome. It matches the enricher's
// outcome hook signature.
func (r *Recorder) ObserveGeocode(o geocode.Outcome) {
	r.GeocodeOutcomes.WithLabelValues(string(o)).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return eris.Wrap(err, "metrics: write textfile")
	}
	return nil
}
