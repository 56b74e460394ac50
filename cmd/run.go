package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/govjobs-ingestor/internal/app"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

func newRunCmd() *cobra.Command {
	var sources []string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs every enabled source once and prints the result",
		Long: `Fetches each enabled source in order, stores new notices and prints a
per-source breakdown. Failing sources are reported and never stop the run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			if len(sources) > 0 {
				e.cfg.Orchestrator.Sources = sources
			}
			return withApp(cmd, func(_ *env, a *app.App) error {
				result := a.Runner().RunAll(cmd.Context())
				renderRunResult(cmd.OutOrStdout(), result)
				return cmd.Context().Err()
			})
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", nil, "source keys to run (default: orchestrator.sources, or all)")
	return cmd
}

func renderRunResult(w io.Writer, result notice.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"Source", "Fetched", "Saved", "Skipped", "Errors", "Duration"})
	for _, src := range result.Sources {
		name := src.Name
		if src.Failed {
			name += " (failed)"
		}
		t.AppendRow(table.Row{name, src.Fetched, src.Saved, src.Skipped, src.Errors, src.Duration.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{
		"Total", result.Fetched, result.Saved, result.Skipped, result.Errors,
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond),
	})
	t.Render()
	_, _ = fmt.Fprintf(w, "run started %s, %d of %d fetched notices processed\n",
		result.StartedAt.Format(time.RFC3339), result.Total, result.Fetched)
}
