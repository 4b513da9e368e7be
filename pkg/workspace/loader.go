package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/loader"
	"github.com/smantzavinos/activity_viewer/pkg/logging"
	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// ErrNoEnabledPages is returned when every page in the workspace is disabled.
var ErrNoEnabledPages = errors.New("no enabled pages in workspace")

// LoadResult contains the result of loading a single page
type LoadResult struct {
	// PageName is the configured name; glob matches get "name/file".
	PageName string

	// Path is the file or URL that was loaded
	Path string

	Summary *model.Summary
	Table   *model.Table

	// Error is set if loading failed
	Error error
}

// AggregateLoader loads every page of a workspace
type AggregateLoader struct {
	config        *Config
	workspaceRoot string
	logger        *slog.Logger
	limit         int
}

// NewAggregateLoader creates a new aggregate loader for the given workspace config
func NewAggregateLoader(config *Config, workspaceRoot string) *AggregateLoader {
	return &AggregateLoader{
		config:        config,
		workspaceRoot: workspaceRoot,
		logger:        logging.Discard(),
		limit:         runtime.GOMAXPROCS(0),
	}
}

// SetLogger sets a custom logger for error reporting
func (l *AggregateLoader) SetLogger(logger *slog.Logger) {
	l.logger = logging.Component(logger, "workspace")
}

// SetConcurrency caps how many pages load at once. n < 1 means no cap.
func (l *AggregateLoader) SetConcurrency(n int) {
	l.limit = n
}

type pageJob struct {
	page PageConfig
	name string
	path string
	err  error
}

// LoadAll loads and consolidates every enabled page. Results follow the
// workspace file order, with glob matches in name order. Failed pages are
// logged and recorded in their result; they don't stop the others.
func (l *AggregateLoader) LoadAll(ctx context.Context) ([]LoadResult, error) {
	if l.config == nil {
		return nil, fmt.Errorf("workspace config is nil")
	}

	enabled := l.config.EnabledPages()
	if len(enabled) == 0 {
		return nil, ErrNoEnabledPages
	}

	jobs := l.expand(enabled)
	results, err := l.loadPagesParallel(ctx, jobs)
	if err != nil {
		return results, fmt.Errorf("fatal error during parallel loading: %w", err)
	}

	for _, result := range results {
		if result.Error != nil {
			l.logger.Warn("failed to load page", "page", result.PageName, "path", result.Path, "error", result.Error)
			continue
		}
		l.logger.Debug("loaded page", "page", result.PageName,
			"blocks", result.Summary.TotalBlocks, "groups", result.Summary.GroupCount())
	}
	return results, nil
}

// expand turns each page entry into one job per file it names.
func (l *AggregateLoader) expand(pages []PageConfig) []pageJob {
	var jobs []pageJob
	for _, p := range pages {
		paths, err := p.Expand(l.workspaceRoot)
		if err != nil {
			jobs = append(jobs, pageJob{page: p, name: p.GetName(), path: p.Path, err: err})
			continue
		}
		if len(paths) == 0 {
			jobs = append(jobs, pageJob{page: p, name: p.GetName(), path: p.Path,
				err: fmt.Errorf("%w matching %q", loader.ErrNoPage, p.Path)})
			continue
		}
		for _, path := range paths {
			name := p.GetName()
			if p.IsGlob() {
				name = name + "/" + filepath.Base(path)
			}
			jobs = append(jobs, pageJob{page: p, name: name, path: path})
		}
	}
	return jobs
}

// loadPagesParallel loads all jobs concurrently using errgroup
func (l *AggregateLoader) loadPagesParallel(ctx context.Context, jobs []pageJob) ([]LoadResult, error) {
	results := make([]LoadResult, len(jobs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			result := LoadResult{PageName: job.name, Path: job.path, Error: job.err}
			if result.Error == nil {
				select {
				case <-ctx.Done():
					result.Error = ctx.Err()
				default:
					result.Summary, result.Table, result.Error = l.loadSinglePage(ctx, job)
				}
			}

			mu.Lock()
			results[i] = result
			mu.Unlock()

			// Individual page errors are captured in results, not propagated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// loadSinglePage loads one page and consolidates it
func (l *AggregateLoader) loadSinglePage(ctx context.Context, job pageJob) (*model.Summary, *model.Table, error) {
	doc, err := loader.LoadDocument(ctx, job.path, l.config.Selectors)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load page %s: %w", job.name, err)
	}
	s := consolidate.Consolidate(doc, job.page.Options())
	t := consolidate.BuildTable(s, consolidate.TableOptions{Chronological: l.config.Chronological})
	return s, t, nil
}

// LoadAllFromConfig is a convenience function that loads a workspace file
// and every page it lists. Relative page paths resolve against the file's
// directory.
func LoadAllFromConfig(ctx context.Context, configPath string, logger *slog.Logger) ([]LoadResult, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace config: %w", err)
	}

	l := NewAggregateLoader(config, filepath.Dir(configPath))
	l.SetLogger(logger)
	return l.LoadAll(ctx)
}

// LoadSummary totals a set of load results
type LoadSummary struct {
	TotalPages      int
	SuccessfulPages int
	FailedPages     int
	TotalBlocks     int
	TotalGroups     int
	SkippedBlocks   int
	FailedPageNames []string
}

// Summarize returns a summary of the load results
func Summarize(results []LoadResult) LoadSummary {
	summary := LoadSummary{
		TotalPages: len(results),
	}

	for _, result := range results {
		if result.Error != nil || result.Summary == nil {
			summary.FailedPages++
			summary.FailedPageNames = append(summary.FailedPageNames, result.PageName)
			continue
		}
		summary.SuccessfulPages++
		summary.TotalBlocks += result.Summary.TotalBlocks
		summary.TotalGroups += result.Summary.GroupCount()
		summary.SkippedBlocks += result.Summary.SkippedBlocks
	}

	return summary
}
