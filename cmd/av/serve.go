package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smantzavinos/activity_viewer/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [page]",
	Short: "Serve the grouped page, its CSV and a JSON summary over HTTP",
	Long: `Serve the page over HTTP:

  /                      the page with activity grouped by minute
  /activity_summary.csv  the summary as CSV
  /api/summary           the summary as JSON
  /healthz               liveness
  /metrics               Prometheus metrics

The page is re-read on the --refresh cron schedule and whenever the file
changes, and the new version is served once it has been consolidated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address (default 127.0.0.1:8787)")
	flags.String("refresh", "", `reload schedule, e.g. "@every 30s" or "*/5 * * * *" (default "@every 1m")`)
	flags.Bool("watch", true, "reload when the page file changes")

	_ = viper.BindPFlag("serve.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("serve.refresh", flags.Lookup("refresh"))
	_ = viper.BindPFlag("serve.watch", flags.Lookup("watch"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if fixturePath != "" {
		return errors.New("serve needs an HTML page, not a fixture")
	}
	cfg, logger, closer, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	srv, err := server.New(server.Options{
		Source:      sourceArg(args),
		Selectors:   cfg.Selectors,
		Consolidate: cfg.ConsolidateOptions(),
		Table:       cfg.TableOptions(),
		Refresh:     cfg.Serve.Refresh,
		Watch:       cfg.Serve.Watch,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := srv.Start(ctx); err != nil {
		srv.Stop()
		return err
	}
	return srv.ListenAndServe(ctx, cfg.Serve.Addr)
}
