package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"farmdash/internal/farm"
	"farmdash/internal/report"
	"farmdash/internal/table"

	"github.com/spf13/cobra"
)

var (
	reportFrom   string
	reportTo     string
	reportFormat string
	reportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report <category>",
	Short: "Export a category's records as CSV, XLSX, PDF, Markdown or HTML",
	Long: `Export the records of one category (feed, mortality, eggs, environment,
or their paths such as feed-usage) for an optional inclusive date range.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runReport(ctx, args[0], cmd.OutOrStdout())
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day to include (YYYY-MM-DD)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "csv", "Output format: csv, xlsx, pdf, markdown or html")
	reportCmd.Flags().StringVarP(&reportOut, "output", "o", "", "Write to this file instead of stdout")
}

func runReport(ctx context.Context, category string, stdout io.Writer) error {
	schema, err := farm.Lookup(category)
	if err != nil {
		return err
	}
	rng, err := report.ParseRange(reportFrom, reportTo)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	source, _, err := dashboardBackend(cfg, st, logger)
	if err != nil {
		return err
	}
	rows, err := table.NewDispatcher(schema, source(schema)).FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s records: %w", schema.Category, err)
	}
	rep := report.Build(schema, rows, rng)

	out := stdout
	if reportOut != "" {
		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", reportOut, err)
		}
		defer f.Close()
		out = f
	}

	return rep.Write(out, format)
}
