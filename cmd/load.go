package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/events-cli/internal/load"
	"github.com/sells-group/events-cli/internal/metrics"
	"github.com/sells-group/events-cli/internal/model"
	"github.com/sells-group/events-cli/internal/store"
)

var (
	loadInput      string
	loadAllowNoGeo bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Upsert normalized events into the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if loadAllowNoGeo {
			cfg.Load.RequireCoordinates = false
		}
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		input := loadInput
		if input == "" {
			input = pipelineConfig().OutputPath()
		}
		events, err := load.ReadEvents(input)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		rec := metrics.New()
		defer writeMetrics(rec)

		stats, err := loadEvents(cmd, st, events, rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rows upserted from %s (%d without coordinates, %d duplicate hashes, %d collapsed)\n",
			stats.Upserted, input, stats.NoCoordinates, stats.DuplicateHash, stats.Collapsed)
		return nil
	},
}

// loadEvents runs the loader with the configured batch size and filters.
func loadEvents(cmd *cobra.Command, st store.Store, events []model.Event, rec *metrics.Recorder) (load.Stats, error) {
	l := load.New(st, load.Options{
		BatchSize:          cfg.Store.BatchSize,
		RequireCoordinates: cfg.Load.RequireCoordinates,
	})
	stats, err := l.Load(cmd.Context(), events)
	rec.LoadedRows.Add(float64(stats.Upserted))
	if err != nil {
		return stats, eris.Wrap(err, "load")
	}
	return stats, nil
}

func init() {
	loadCmd.Flags().StringVar(&loadInput, "input", "", "normalized events file (default: pipeline output file)")
	loadCmd.Flags().BoolVar(&loadAllowNoGeo, "allow-missing-coordinates", false, "also load events that could not be geocoded")
	rootCmd.AddCommand(loadCmd)
}
