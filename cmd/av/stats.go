package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/analysis"
	"github.com/smantzavinos/activity_viewer/pkg/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats [page]",
	Short: "Show how activity is spread over minutes, users and fields",
	Long: `Display statistics for a page:

- blocks, groups and blocks without a timestamp
- mean, median, standard deviation and maximum blocks per minute
- the busiest minute and the most active users
- how often each field column has a value`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	r, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	st := analysis.ComputeStats(r.summary)
	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	printStatsText(out, st, r.summary.Schema, analysis.GroupSizes(r.summary, r.table))
	return nil
}

func printStatsText(out io.Writer, st analysis.GroupStats, schema []string, sizes []int) {
	theme := ui.DefaultTheme(lipgloss.NewRenderer(out))

	fmt.Fprintln(out)
	fmt.Fprintln(out, "ACTIVITY SUMMARY")
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintf(out, "Blocks:  %d (%d without timestamp)\n", st.Blocks, st.Skipped)
	fmt.Fprintf(out, "Groups:  %d\n", st.Groups)
	if st.Groups == 0 {
		return
	}
	fmt.Fprintf(out, "Per minute: mean %.2f, median %.1f, stddev %.2f, max %d\n",
		st.MeanSize, st.MedianSize, st.StdDevSize, st.MaxSize)
	fmt.Fprintf(out, "Busiest:  %s\n", st.BusiestKey.Display())
	fmt.Fprintf(out, "Timeline: %s\n", ui.RenderGroupSparkline(sizes, 40))
	fmt.Fprintln(out)

	if len(st.TopUsers) > 0 {
		fmt.Fprintln(out, "USERS")
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for _, u := range st.TopUsers {
			fmt.Fprintf(out, "%-24s %d\n", u.User, u.Blocks)
		}
		fmt.Fprintln(out)
	}

	if len(schema) > 0 {
		fmt.Fprintln(out, "FIELD FILL RATE")
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for _, name := range schema {
			rate := st.FieldFillRate[name]
			bar := theme.Renderer.NewStyle().
				Foreground(ui.GetHeatmapColor(rate, theme)).
				Render(ui.RenderSparkline(rate, 20))
			fmt.Fprintf(out, "%-24s %s %3.0f%%\n", name, bar, rate*100)
		}
	}
}
