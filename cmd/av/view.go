package main

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/loader"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/ui"
	"github.com/smantzavinos/activity_viewer/pkg/watcher"
)

var viewCmd = &cobra.Command{
	Use:   "view [page]",
	Short: "Browse the summary in an interactive table",
	Long: `Open a full-screen table of the summary.

Drag a column's right edge or press < and > to resize it, r and R to reset,
enter to see a full cell, e to export CSV, y to copy a cell and ? for help.
With --watch the table refreshes whenever the page file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

var (
	viewWatch  bool
	viewExport string
)

func init() {
	viewCmd.Flags().BoolVarP(&viewWatch, "watch", "w", false, "reload when the page file changes")
	viewCmd.Flags().StringVar(&viewExport, "export-path", "", "where `e` writes the CSV (default activity_summary.csv)")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	r, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	opts := []ui.Option{
		ui.WithSource(r.source),
		ui.WithDarkBackground(lipgloss.HasDarkBackground()),
	}
	if viewExport != "" {
		opts = append(opts, ui.WithExportPath(viewExport))
	}

	if viewWatch {
		path := fixturePath
		if path == "" {
			if loader.IsURL(r.source) || r.source == loader.StdinSource {
				return errors.New("--watch needs a local page file")
			}
			if path, err = loader.ResolveSource(r.source); err != nil {
				return err
			}
		}
		w, err := watcher.New(path, watcher.WithLogger(r.logger))
		if err != nil {
			return err
		}
		defer w.Stop()

		ctx := cmd.Context()
		opts = append(opts, ui.WithReload(w.Changes(), func() (*model.Summary, *model.Table, error) {
			return r.reload(ctx)
		}))
	}

	return ui.Run(ui.NewModel(r.summary, r.table, opts...))
}
