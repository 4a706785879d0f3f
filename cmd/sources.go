package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/events-cli/internal/normalize"
	"github.com/sells-group/events-cli/internal/pipeline"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources and their input files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatSources(cmd.OutOrStdout(), normalize.DefaultRegistry(), pipelineConfig())
		return nil
	},
}

// formatSources writes one line per registered source in processing order.
func formatSources(out io.Writer, reg *normalize.Registry, pc pipeline.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tSOURCE\tDEDUP KEY\tINPUT\tPRESENT")
	for _, a := range reg.All() {
		path := pc.SourcePath(a.Key())
		present := "no"
		if _, err := os.Stat(path); err == nil {
			present = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Key(), a.Source(), a.KeyStyle(), path, present)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
