// Package config holds the av settings resolved by viper from defaults,
// the config file, AV_* environment variables and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/logging"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// EnvPrefix is prepended to every environment override, e.g.
// AV_SERVE_ADDR for serve.addr.
const EnvPrefix = "AV"

// Config is the resolved configuration.
type Config struct {
	LabelPrefix   string         `mapstructure:"label_prefix"`
	TrackComments bool           `mapstructure:"track_comments"`
	Chronological bool           `mapstructure:"chronological"`
	Selectors     page.Selectors `mapstructure:"selectors"`
	Log           LogConfig      `mapstructure:"log"`
	Serve         ServeConfig    `mapstructure:"serve"`
}

// LogConfig controls pkg/logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ServeConfig controls `av serve`.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`

	// Refresh is a robfig/cron spec such as "@every 1m". Empty disables
	// scheduled reloads.
	Refresh string `mapstructure:"refresh"`

	Watch bool `mapstructure:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := consolidate.DefaultOptions()
	return &Config{
		LabelPrefix:   opts.LabelPrefix,
		TrackComments: opts.TrackComments,
		Selectors:     page.DefaultSelectors(),
		Log: LogConfig{
			Level:  logging.LevelInfo,
			Format: logging.FormatText,
		},
		Serve: ServeConfig{
			Addr:    "127.0.0.1:8787",
			Refresh: "@every 1m",
			Watch:   true,
		},
	}
}

// SetDefaults registers every default with viper so keys resolve even
// without a config file.
func SetDefaults() {
	d := Default()

	viper.SetDefault("label_prefix", d.LabelPrefix)
	viper.SetDefault("track_comments", d.TrackComments)
	viper.SetDefault("chronological", d.Chronological)

	viper.SetDefault("selectors.block", d.Selectors.Block)
	viper.SetDefault("selectors.timestamp", d.Selectors.Timestamp)
	viper.SetDefault("selectors.timestamp_attr", d.Selectors.TimestampAttr)
	viper.SetDefault("selectors.user", d.Selectors.User)
	viper.SetDefault("selectors.comment_class", d.Selectors.CommentClass)
	viper.SetDefault("selectors.comment_body", d.Selectors.CommentBody)
	viper.SetDefault("selectors.row", d.Selectors.Row)
	viper.SetDefault("selectors.label", d.Selectors.Label)
	viper.SetDefault("selectors.new_value", d.Selectors.NewValue)
	viper.SetDefault("selectors.mount", d.Selectors.Mount)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
	viper.SetDefault("log.file", d.Log.File)

	viper.SetDefault("serve.addr", d.Serve.Addr)
	viper.SetDefault("serve.refresh", d.Serve.Refresh)
	viper.SetDefault("serve.watch", d.Serve.Watch)
}

// ConfigureEnv makes AV_* variables override config keys.
func ConfigureEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "av")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".av"
	}
	return filepath.Join(home, ".config", "av")
}

// Load unmarshals the current viper state.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Selectors = cfg.Selectors.WithDefaults()
	return &cfg, nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format must be %q or %q, got %q", logging.FormatText, logging.FormatJSON, c.Log.Format)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	return nil
}

// ConsolidateOptions returns the options for a consolidation pass.
func (c *Config) ConsolidateOptions() consolidate.Options {
	return consolidate.Options{LabelPrefix: c.LabelPrefix, TrackComments: c.TrackComments}
}

// TableOptions returns the options for rendering the table.
func (c *Config) TableOptions() consolidate.TableOptions {
	return consolidate.TableOptions{Chronological: c.Chronological}
}
