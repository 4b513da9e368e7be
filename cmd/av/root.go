package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smantzavinos/activity_viewer/pkg/config"
	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/loader"
	"github.com/smantzavinos/activity_viewer/pkg/logging"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
	"github.com/smantzavinos/activity_viewer/pkg/version"
)

// localConfigName is picked up from the working directory before the
// user config dir.
const localConfigName = ".av.yaml"

var rootCmd = &cobra.Command{
	Use:   "av",
	Short: "Consolidate an issue page's activity log by minute",
	Long: `av reads a saved issue page (file, directory, stdin or URL), groups its
activity blocks by the minute they happened in and renders one row per minute:
who acted, what they commented and the new value of every changed field.

The summary can be printed, exported (CSV, markdown, JSON, SQLite, chart),
written back into the page, browsed interactively or served over HTTP.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	fixturePath string
	configErr   error
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.config/av/config.yaml or ./.av.yaml)")
	flags.StringVar(&fixturePath, "fixture", "", "read blocks from a JSON fixture instead of an HTML page")
	flags.String("label-prefix", consolidate.DefaultLabelPrefix, "label text stripped from new-value cells")
	flags.Bool("track-comments", true, "add a Comments column")
	flags.Bool("chronological", false, "sort rows by time instead of first appearance")
	flags.String("log-level", logging.LevelInfo, "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatText, "log format (text, json)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("label_prefix", flags.Lookup("label-prefix"))
	_ = viper.BindPFlag("track_comments", flags.Lookup("track-comments"))
	_ = viper.BindPFlag("chronological", flags.Lookup("chronological"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	config.SetDefaults()

	cfgFile := viper.GetString("config")
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case fileExists(localConfigName):
		viper.SetConfigFile(localConfigName)
	default:
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	config.ConfigureEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config: %w", err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// loadConfig returns the resolved configuration and a logger for it.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, io.Closer, error) {
	if configErr != nil {
		return nil, nil, nil, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Log.File != "" {
		logger, f, err := logging.NewFile(cfg.Log.File, cfg.Log.Level)
		if err != nil {
			return nil, nil, nil, err
		}
		return cfg, logger, f, nil
	}
	return cfg, logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format), nil, nil
}

// sourceArg returns the page source named on the command line. With no
// argument the working directory is searched for a page.
func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// run is one consolidated page.
type run struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer

	source  string
	doc     page.DocumentQuery
	html    *page.HTMLDocument // nil for fixtures
	summary *model.Summary
	table   *model.Table
}

func (r *run) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// prepare loads the source named in args and consolidates it.
func prepare(cmd *cobra.Command, args []string) (*run, error) {
	cfg, logger, closer, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	r := &run{cfg: cfg, logger: logger, closer: closer, source: sourceArg(args)}

	if err := r.load(cmd.Context()); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *run) load(ctx context.Context) error {
	if fixturePath != "" {
		f, err := os.Open(fixturePath)
		if err != nil {
			return fmt.Errorf("failed to open fixture: %w", err)
		}
		defer f.Close()
		fx, err := page.LoadFixture(f)
		if err != nil {
			return err
		}
		r.source = fixturePath
		r.doc = fx
	} else {
		doc, err := loader.LoadDocument(ctx, r.source, r.cfg.Selectors)
		if err != nil {
			return err
		}
		r.doc = doc
		r.html = doc
	}

	r.summary = consolidate.Consolidate(r.doc, r.cfg.ConsolidateOptions())
	r.table = consolidate.BuildTable(r.summary, r.cfg.TableOptions())
	r.logger.Debug("consolidated",
		"source", r.source,
		"blocks", r.summary.TotalBlocks,
		"groups", r.summary.GroupCount(),
		"skipped", r.summary.SkippedBlocks)
	return nil
}

// reload re-reads the same source, for the viewer's watch mode.
func (r *run) reload(ctx context.Context) (*model.Summary, *model.Table, error) {
	if err := r.load(ctx); err != nil {
		return nil, nil, err
	}
	return r.summary, r.table, nil
}
