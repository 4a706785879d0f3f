package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/events-cli/internal/metrics"
	"github.com/sells-group/events-cli/internal/model"
)

var (
	runSources []string
	runDataDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Normalize then load, recording the run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applyPipelineFlags(runSources, runDataDir, "")
		if err := cfg.Validate("run"); err != nil {
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

		res, runErr := normalizeOnce(cmd, rec)
		if res == nil {
			return runErr
		}
		run := res.Run

		if runErr == nil {
			stats, loadErr := loadEvents(cmd, st, res.Events, rec)
			run.Loaded = stats.Upserted
			if loadErr != nil {
				runErr = loadErr
				run.Status = model.RunStatusFailed
				run.Error = loadErr.Error()
				run.FinishedAt = time.Now().UTC()
			}
		}

		if err := st.RecordRun(ctx, run); err != nil {
			zap.L().Warn("run: failed to record run", zap.String("run_id", run.ID), zap.Error(err))
		}
		if runErr != nil {
			return runErr
		}

		formatRunSummary(cmd.OutOrStdout(), run)
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runSources, "source", nil, "sources to process (default: all registered)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "directory holding <source>.json inputs (overrides pipeline.data_dir)")
	rootCmd.AddCommand(runCmd)
}
