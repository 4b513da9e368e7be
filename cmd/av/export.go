package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/export"
)

// defaultExportNames maps each export format to its default file.
var defaultExportNames = map[string]string{
	"csv":    export.DefaultCSVFilename,
	"md":     "activity_summary.md",
	"json":   "activity_summary.json",
	"sqlite": "activity_summary.sqlite3",
	"svg":    "activity_chart.svg",
	"png":    "activity_chart.png",
}

var exportCmd = &cobra.Command{
	Use:   "export [page]",
	Short: "Write the summary to a file",
	Long: `Write the consolidated summary to a file.

Formats:
  csv     every cell quoted, the same file the page's "Export to CSV" link produces
  md      markdown report with a per-minute breakdown
  json    summary, table and run metadata
  sqlite  snapshot database with one row per group and value
  svg,png bar chart of blocks per minute

An existing file is only replaced after confirmation, or with --force.
With -o - the csv is written to stdout instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
	exportForce  bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format (csv, md, json, sqlite, svg, png)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (default depends on format, - writes csv to stdout)")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "overwrite an existing file without asking")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	path := exportOutput
	if path == "" {
		name, ok := defaultExportNames[format]
		if !ok {
			return fmt.Errorf("unknown export format %q", exportFormat)
		}
		path = name
	}

	if path == "-" && format != "csv" {
		return fmt.Errorf("only csv can be written to stdout, not %q", exportFormat)
	}

	r, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	if path == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), r.table)
	}

	if err := (export.Overwrite{Force: exportForce}).Allow(path); err != nil {
		return err
	}

	switch format {
	case "csv":
		err = export.SaveCSVToFile(r.table, path)
	case "md":
		err = export.SaveMarkdownToFile(r.summary, r.table, path)
	case "json":
		err = export.SaveJSONToFile(r.summary, r.table, export.NewExportMeta(r.summary, r.table, r.source), path)
	case "sqlite":
		err = export.NewSQLiteExporter(r.summary, r.table, export.NewExportMeta(r.summary, r.table, r.source)).Export(path)
	case "svg", "png":
		err = export.SaveChart(export.ChartBars(r.summary, r.table), "Blocks per minute", path)
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}

	r.logger.Info("exported", "format", format, "path", path, "rows", len(r.table.Rows))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
