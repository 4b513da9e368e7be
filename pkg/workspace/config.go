// Package workspace loads several issue pages described by a workspace
// file and consolidates each of them.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/loader"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// DefaultConfigName is the workspace file looked up by `av workspace`.
const DefaultConfigName = "workspace.yaml"

// Config is the parsed workspace file.
type Config struct {
	Name string `yaml:"name,omitempty"`

	// Selectors apply to every page; empty entries use the defaults.
	Selectors page.Selectors `yaml:"selectors,omitempty"`

	// Chronological sorts every page's rows by key.
	Chronological bool `yaml:"chronological,omitempty"`

	Pages []PageConfig `yaml:"pages"`
}

// PageConfig is one entry under pages:.
type PageConfig struct {
	Name string `yaml:"name,omitempty"`

	// Path is a file, a directory, an http(s) URL or a doublestar glob
	// relative to the workspace root.
	Path string `yaml:"path"`

	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	LabelPrefix   *string `yaml:"label_prefix,omitempty"`
	TrackComments *bool   `yaml:"track_comments,omitempty"`
}

// IsEnabled reports whether the page should be loaded.
func (p PageConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// GetName returns the configured name, or the last path element.
func (p PageConfig) GetName() string {
	if p.Name != "" {
		return p.Name
	}
	return filepath.Base(strings.TrimRight(p.Path, "/"))
}

// Options returns the consolidation options for this page.
func (p PageConfig) Options() consolidate.Options {
	opts := consolidate.DefaultOptions()
	if p.LabelPrefix != nil {
		opts.LabelPrefix = *p.LabelPrefix
	}
	if p.TrackComments != nil {
		opts.TrackComments = *p.TrackComments
	}
	return opts
}

// IsGlob reports whether Path contains glob metacharacters.
func (p PageConfig) IsGlob() bool {
	return !loader.IsURL(p.Path) && strings.ContainsAny(p.Path, "*?[{")
}

// Expand resolves Path against root. Plain paths and URLs come back as
// one entry; globs come back as every matching file in name order.
func (p PageConfig) Expand(root string) ([]string, error) {
	if !p.IsGlob() {
		if loader.IsURL(p.Path) || filepath.IsAbs(p.Path) {
			return []string{p.Path}, nil
		}
		return []string{filepath.Join(root, p.Path)}, nil
	}

	pattern := filepath.ToSlash(p.Path)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob %q", p.Path)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", p.Path, err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(root, filepath.FromSlash(m)))
	}
	return paths, nil
}

// LoadConfig reads and validates a workspace file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates workspace YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse workspace config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every page has a path and a unique name.
func (c *Config) Validate() error {
	if len(c.Pages) == 0 {
		return fmt.Errorf("workspace config has no pages")
	}
	seen := make(map[string]int, len(c.Pages))
	for i, p := range c.Pages {
		if strings.TrimSpace(p.Path) == "" {
			return fmt.Errorf("page %d: path is required", i+1)
		}
		name := p.GetName()
		if prev, dup := seen[name]; dup {
			return fmt.Errorf("page %d: name %q already used by page %d", i+1, name, prev+1)
		}
		seen[name] = i
	}
	return nil
}

// EnabledPages returns the pages that should be loaded, in file order.
func (c *Config) EnabledPages() []PageConfig {
	var enabled []PageConfig
	for _, p := range c.Pages {
		if p.IsEnabled() {
			enabled = append(enabled, p)
		}
	}
	return enabled
}
