package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

var augmentCmd = &cobra.Command{
	Use:   "augment [page]",
	Short: "Write a copy of the page with activity grouped by minute",
	Long: `Rewrite the page: blocks of the same minute are wrapped in a shaded
container with an "Activities at ..." heading, and an "Activity Details
Summary" table with an "Export to CSV" link is appended to the issue panel.

The result goes to --output, or stdout when it is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAugment,
}

var (
	augmentOutput string
	augmentForce  bool
)

func init() {
	augmentCmd.Flags().StringVarP(&augmentOutput, "output", "o", "-", "output HTML file, or - for stdout")
	augmentCmd.Flags().BoolVar(&augmentForce, "force", false, "overwrite an existing file without asking")
	rootCmd.AddCommand(augmentCmd)
}

func runAugment(cmd *cobra.Command, args []string) error {
	if fixturePath != "" {
		return errors.New("augment needs an HTML page, not a fixture")
	}
	r, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	res := r.html.Augment(r.summary, r.table, page.AugmentOptions{
		CSV:         export.EncodeCSV(r.table),
		CSVFilename: export.DefaultCSVFilename,
	})
	if !res.Mounted {
		r.logger.Warn("mount point not found; summary table not added", "selector", r.cfg.Selectors.Mount)
	}

	if augmentOutput == "-" {
		if err := r.html.Render(cmd.OutOrStdout()); err != nil {
			return err
		}
	} else {
		if err := (export.Overwrite{Force: augmentForce}).Allow(augmentOutput); err != nil {
			return err
		}
		f, err := os.Create(augmentOutput)
		if err != nil {
			return err
		}
		if err := r.html.Render(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), res.String())
	return nil
}
