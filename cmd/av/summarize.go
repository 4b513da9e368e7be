package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/ui"
)

const (
	formatAuto     = "auto"
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [page]",
	Short: "Print the consolidated activity table",
	Long: `Print one row per minute of activity.

The page may be an HTML file, a directory containing one, "-" for stdin or an
http(s) URL. With --format auto, a terminal gets a rendered markdown table and
a pipe gets a plain bordered table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

var summarizeFormat string

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeFormat, "format", "f", formatAuto, "output format (auto, table, markdown, csv)")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	r, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	out := cmd.OutOrStdout()
	format := summarizeFormat
	if format == formatAuto {
		format = formatTable
		if isTerminal(out) {
			format = formatMarkdown
		}
	}

	switch format {
	case formatCSV:
		if err = export.WriteCSV(out, r.table); err == nil {
			_, err = fmt.Fprintln(out)
		}
	case formatTable:
		_, err = fmt.Fprintln(out, renderPlainTable(r.table))
	case formatMarkdown:
		md, mdErr := export.GenerateMarkdown(r.summary, r.table, "Activity summary")
		if mdErr != nil {
			return mdErr
		}
		if isTerminal(out) {
			md = ui.NewMarkdownRenderer(terminalWidth(out), lipgloss.HasDarkBackground()).Render(md)
		}
		_, err = fmt.Fprintln(out, md)
	default:
		return fmt.Errorf("unknown format %q", summarizeFormat)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Grouped %d items into %d datetime groups\n",
		r.summary.TotalBlocks-r.summary.SkippedBlocks, r.summary.GroupCount())
	return nil
}

// renderPlainTable draws t with a normal border and no colour.
func renderPlainTable(t *model.Table) string {
	if len(t.Headers) == 0 {
		return "no activity found"
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = row.Cells
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
