package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/govjobs-ingestor/internal/app"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
	"github.com/JakeFAU/govjobs-ingestor/internal/source"
)

const titleWidth = 60

func newNoticesCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Lists the most recently stored notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0, got %d", limit)
			}
			return withApp(cmd, func(_ *env, a *app.App) error {
				notices, err := a.Store().ListRecent(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("list notices: %w", err)
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if notices == nil {
						notices = []notice.StoredNotice{}
					}
					return enc.Encode(notices)
				}
				renderNotices(cmd.OutOrStdout(), notices)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of notices")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func renderNotices(w io.Writer, notices []notice.StoredNotice) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: titleWidth}})
	t.AppendHeader(table.Row{"Fetched", "Title", "Category", "State", "Type", "Last date"})
	for _, n := range notices {
		t.AppendRow(table.Row{
			n.FetchedAt.Local().Format(time.DateTime),
			n.Title,
			n.Category,
			n.State,
			n.NoticeType,
			dateOrDash(n.LastDate),
		})
	}
	t.AppendFooter(table.Row{"Total", len(notices)})
	t.Render()
}

func dateOrDash(d *notice.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Lists the source keys accepted by orchestrator.sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := resolveEnv(cmd.Context())
			if err != nil {
				return err
			}
			enabled := make(map[string]bool, len(e.cfg.Orchestrator.Sources))
			for _, key := range e.cfg.Orchestrator.Sources {
				enabled[key] = true
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Key", "Enabled"})
			for _, key := range source.Keys() {
				t.AppendRow(table.Row{key, len(enabled) == 0 || enabled[key]})
			}
			t.Render()
			return nil
		},
	}
}
