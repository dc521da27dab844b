package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

func newShowCmd(stdout, stderr io.Writer) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show [overview|containers|vms|storage-pools|networks]",
		Short: "Print one dashboard tab",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab := dashboard.TabOverview
			if len(args) == 1 {
				tab = dashboard.ParseTab(args[0])
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported --output: %s", output)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			conn, err := cfg.Connection()
			if err != nil {
				return err
			}
			src, err := openSource(conn, cfg.RequestTimeout, logger)
			if err != nil {
				return err
			}

			loader := dashboard.NewLoader(src, models.NewFetchStore(0), dashboard.LoaderConfig{
				Timeout:        cfg.RequestTimeout,
				MaxConcurrency: cfg.MaxConcurrency,
			}, logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := loader.Load(ctx, tab); err != nil {
				return err
			}
			view := loader.View(tab)

			for _, e := range view.Errors {
				fmt.Fprintf(stderr, "warning: failed to load %s: %s\n", strings.ToLower(e.Label), e.Message)
			}

			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			return renderView(stdout, view)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}

func renderView(w io.Writer, v dashboard.View) error {
	if v.Table == nil {
		if v.ShowEmptyState {
			fmt.Fprintln(w, dashboard.EmptyStateTitle)
			fmt.Fprintln(w, dashboard.EmptyStateMessage)
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tCOUNT")
		for _, c := range v.Summary.Cards {
			fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Count)
		}
		fmt.Fprintf(tw, "Total\t%d\n", v.Summary.Total)
		return tw.Flush()
	}

	if v.Table.Empty {
		fmt.Fprintln(w, v.Table.EmptyMessage)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(v.Table.Columns))
	for i, c := range v.Table.Columns {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range v.Table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
