package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smantzavinos/activity_viewer/pkg/updater"
	"github.com/smantzavinos/activity_viewer/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the av version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionCheck bool

func init() {
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "ask GitHub whether a newer release exists")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, version.String())
	if !versionCheck {
		return nil
	}

	res, err := updater.NewChecker().Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if res.Available {
		fmt.Fprintf(out, "A newer release is available: %s\n%s\n", res.Latest, res.URL)
	} else {
		fmt.Fprintln(out, "av is up to date")
	}
	return nil
}
