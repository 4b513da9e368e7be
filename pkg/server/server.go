// Package server serves the augmented page, its CSV and a JSON summary
// over HTTP, reloading the source on a schedule and on file change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/loader"
	"github.com/smantzavinos/activity_viewer/pkg/logging"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
	"github.com/smantzavinos/activity_viewer/pkg/watcher"
)

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	// Source is a page file, directory or http(s) URL. Stdin cannot be
	// reloaded and is rejected.
	Source string

	Selectors   page.Selectors
	Consolidate consolidate.Options
	Table       consolidate.TableOptions

	// Refresh is a cron spec ("@every 1m", "*/5 * * * *"). Empty disables
	// scheduled reloads.
	Refresh string

	// Watch reloads when a local source file changes.
	Watch bool

	Logger *slog.Logger
}

// Snapshot is one immutable consolidation of the source.
type Snapshot struct {
	Source   string
	LoadedAt time.Time
	Summary  *model.Summary
	Table    *model.Table
	Meta     export.ExportMeta
	CSV      string
	Page     string
}

// BuildSnapshot loads the source once and renders everything the
// handlers serve.
func BuildSnapshot(ctx context.Context, opts Options) (*Snapshot, error) {
	doc, err := loader.LoadDocument(ctx, opts.Source, opts.Selectors)
	if err != nil {
		return nil, err
	}
	s := consolidate.Consolidate(doc, opts.Consolidate)
	t := consolidate.BuildTable(s, opts.Table)
	csv := export.EncodeCSV(t)

	doc.Augment(s, t, page.AugmentOptions{CSV: csv, CSVFilename: export.DefaultCSVFilename})
	html, err := doc.HTML()
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	return &Snapshot{
		Source:   opts.Source,
		LoadedAt: time.Now(),
		Summary:  s,
		Table:    t,
		Meta:     export.NewExportMeta(s, t, opts.Source),
		CSV:      csv,
		Page:     html,
	}, nil
}

// Server publishes the latest Snapshot. Reloads replace it atomically, so
// a request always sees one complete snapshot.
type Server struct {
	opts   Options
	logger *slog.Logger

	snap     atomic.Pointer[Snapshot]
	reloadMu sync.Mutex

	cron    *cron.Cron
	watcher *watcher.Watcher
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped sync.Once
}

// New creates a server for opts. Call Start to load and begin refreshing.
func New(opts Options) (*Server, error) {
	if opts.Source == "" {
		return nil, errors.New("server: source is required")
	}
	if opts.Source == loader.StdinSource {
		return nil, errors.New("server: stdin cannot be served; pass a file or URL")
	}
	return &Server{
		opts:   opts,
		logger: logging.Component(opts.Logger, "server"),
		stopCh: make(chan struct{}),
	}, nil
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *Server) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Reload rebuilds the snapshot. changed is false when the rendered table
// hashes the same as the current one; the old snapshot is kept then.
func (s *Server) Reload(ctx context.Context) (changed bool, err error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	next, err := BuildSnapshot(ctx, s.opts)
	if err != nil {
		recordReload(reloadError)
		return false, err
	}

	if cur := s.snap.Load(); cur != nil && cur.Meta.DataHash == next.Meta.DataHash {
		recordReload(reloadUnchanged)
		return false, nil
	}

	s.snap.Store(next)
	recordSnapshot(next)
	recordReload(reloadChanged)
	return true, nil
}

func (s *Server) reloadAndLog(ctx context.Context, trigger string) {
	changed, err := s.Reload(ctx)
	if err != nil {
		s.logger.Error("reload failed", "trigger", trigger, "source", s.opts.Source, "error", err)
		return
	}
	if changed {
		snap := s.Snapshot()
		s.logger.Info("reloaded", "trigger", trigger, "groups", snap.Summary.GroupCount(), "hash", snap.Meta.DataHash)
	}
}

// Start performs the first load, then starts the cron schedule and file
// watcher when configured.
func (s *Server) Start(ctx context.Context) error {
	if _, err := s.Reload(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}

	if s.opts.Refresh != "" {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(s.opts.Refresh, func() { s.reloadAndLog(ctx, "schedule") }); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", s.opts.Refresh, err)
		}
		s.cron.Start()
	}

	if s.opts.Watch && !loader.IsURL(s.opts.Source) {
		path, err := loader.ResolveSource(s.opts.Source)
		if err != nil {
			return err
		}
		w, err := watcher.New(path, watcher.WithLogger(s.opts.Logger))
		if err != nil {
			s.logger.Warn("file watching disabled", "error", err)
		} else {
			s.watcher = w
			s.wg.Add(1)
			go s.watchLoop(ctx)
		}
	}
	return nil
}

func (s *Server) watchLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-s.watcher.Changes():
			s.reloadAndLog(ctx, "watch")
		}
	}
}

// Stop halts scheduled and watched reloads.
func (s *Server) Stop() {
	s.stopped.Do(func() {
		close(s.stopCh)
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		if s.watcher != nil {
			s.watcher.Stop()
		}
		s.wg.Wait()
	})
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.pageHandler)
	r.Get("/"+export.DefaultCSVFilename, s.csvHandler)
	r.Get("/api/summary", s.summaryHandler)
	r.Get("/healthz", healthzHandler)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe serves Handler on addr until ctx is cancelled, then shuts
// down gracefully and stops reloading.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Stop()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) current(w http.ResponseWriter) *Snapshot {
	snap := s.Snapshot()
	if snap == nil {
		http.Error(w, "summary not loaded yet", http.StatusServiceUnavailable)
	}
	return snap
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	recordRequest("page")
	snap := s.current(w)
	if snap == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(snap.Page))
}

func (s *Server) csvHandler(w http.ResponseWriter, r *http.Request) {
	recordRequest("csv")
	snap := s.current(w)
	if snap == nil {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DefaultCSVFilename))
	_, _ = w.Write([]byte(snap.CSV))
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	recordRequest("summary")
	snap := s.current(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, export.BuildDocument(snap.Summary, snap.Table, snap.Meta))
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
