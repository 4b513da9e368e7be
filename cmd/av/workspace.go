package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/workspace"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace [workspace.yaml]",
	Short: "Summarise every page listed in a workspace file",
	Long: `Load every enabled page of a workspace file in parallel and print one line
per page. A page that fails to load is reported without stopping the others.

Example workspace.yaml:

  name: sprint-12
  pages:
    - name: login-bug
      path: saved/ISSUE-101.html
    - name: archive
      path: "archive/**/*.html"
      track_comments: false`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWorkspace,
}

var (
	workspaceConcurrency int
	workspaceCSVDir      string
	workspaceJSON        bool
)

func init() {
	workspaceCmd.Flags().IntVar(&workspaceConcurrency, "concurrency", 0, "pages loaded at once (default GOMAXPROCS)")
	workspaceCmd.Flags().StringVar(&workspaceCSVDir, "csv-dir", "", "also write one CSV per page into this directory")
	workspaceCmd.Flags().BoolVar(&workspaceJSON, "json", false, "print the totals as JSON")
	rootCmd.AddCommand(workspaceCmd)
}

type workspacePageJSON struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Blocks int    `json:"blocks,omitempty"`
	Groups int    `json:"groups,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runWorkspace(cmd *cobra.Command, args []string) error {
	_, logger, closer, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	path := workspace.DefaultConfigName
	if len(args) > 0 {
		path = args[0]
	}
	ws, err := workspace.LoadConfig(path)
	if err != nil {
		return err
	}

	l := workspace.NewAggregateLoader(ws, filepath.Dir(path))
	l.SetLogger(logger)
	if workspaceConcurrency > 0 {
		l.SetConcurrency(workspaceConcurrency)
	}
	results, err := l.LoadAll(cmd.Context())
	if err != nil {
		return err
	}

	if workspaceCSVDir != "" {
		if err := os.MkdirAll(workspaceCSVDir, 0755); err != nil {
			return fmt.Errorf("create csv dir: %w", err)
		}
		for _, res := range results {
			if res.Error != nil {
				continue
			}
			out := filepath.Join(workspaceCSVDir, csvName(res.PageName))
			if err := export.SaveCSVToFile(res.Table, out); err != nil {
				return fmt.Errorf("export %s: %w", res.PageName, err)
			}
		}
	}

	sum := workspace.Summarize(results)
	out := cmd.OutOrStdout()

	if workspaceJSON {
		pages := make([]workspacePageJSON, len(results))
		for i, res := range results {
			p := workspacePageJSON{Name: res.PageName, Path: res.Path}
			if res.Error != nil {
				p.Error = res.Error.Error()
			} else {
				p.Blocks = res.Summary.TotalBlocks
				p.Groups = res.Summary.GroupCount()
			}
			pages[i] = p
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"workspace": ws.Name, "pages": pages, "totals": sum}); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Error != nil {
				fmt.Fprintf(out, "%-30s FAILED  %v\n", res.PageName, res.Error)
				continue
			}
			fmt.Fprintf(out, "%-30s %4d blocks  %4d groups\n", res.PageName, res.Summary.TotalBlocks, res.Summary.GroupCount())
		}
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintf(out, "%d/%d pages loaded, %d blocks in %d groups (%d without timestamp)\n",
			sum.SuccessfulPages, sum.TotalPages, sum.TotalBlocks, sum.TotalGroups, sum.SkippedBlocks)
	}

	if sum.SuccessfulPages == 0 {
		return fmt.Errorf("no page could be loaded (%s)", strings.Join(sum.FailedPageNames, ", "))
	}
	return nil
}

// csvName turns a page name such as "archive/2024/a.html" into a flat file
// name.
func csvName(pageName string) string {
	base := strings.TrimSuffix(pageName, filepath.Ext(pageName))
	base = strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(base)
	return base + ".csv"
}
