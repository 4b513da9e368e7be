package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/server"
)

const pageV1 = `<html><body><div class="issuePanelContainer">
<div class="issue-data-block"><time class="livestamp" datetime="2024-03-01T10:15:42Z"></time><a class="user-hover">anna</a>
<table><tr><td class="activity-name">Statuss</td><td class="activity-new-val">Jaunā vērtībaAtvērts</td></tr></table></div>
</div></body></html>`

const pageV2 = `<html><body><div class="issuePanelContainer">
<div class="issue-data-block"><time class="livestamp" datetime="2024-03-01T10:15:42Z"></time><a class="user-hover">anna</a>
<table><tr><td class="activity-name">Statuss</td><td class="activity-new-val">Jaunā vērtībaAtvērts</td></tr></table></div>
<div class="issue-data-block"><time class="livestamp" datetime="2024-03-01T12:00:00Z"></time><a class="user-hover">janis</a>
<table><tr><td class="activity-name">Statuss</td><td class="activity-new-val">Jaunā vērtībaSlēgts</td></tr></table></div>
</div></body></html>`

func newServer(t *testing.T, content string, mutate func(*server.Options)) (*server.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity.html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	opts := server.Options{Source: path, Consolidate: consolidate.DefaultOptions()}
	if mutate != nil {
		mutate(&opts)
	}
	srv, err := server.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, path
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

// =============================================================================
// Routes
// =============================================================================

func TestRoutes(t *testing.T) {
	srv, _ := newServer(t, pageV1, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Activity Details Summary") {
		t.Errorf("GET / = %d, body missing summary", resp.StatusCode)
	}
	if !strings.Contains(body, "datetime-group-container") {
		t.Error("page should be augmented with group containers")
	}

	resp, body = get(t, ts, "/activity_summary.csv")
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("csv content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="activity_summary.csv"`) {
		t.Errorf("content disposition = %q", cd)
	}
	want := "\"Datetime\",\"User\",\"Comments\",\"Statuss\"\n\"01.03.2024 10:15\",\"anna\",\"\",\"Atvērts\""
	if body != want {
		t.Errorf("csv =\n%s\nwant\n%s", body, want)
	}

	resp, body = get(t, ts, "/api/summary")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary status = %d", resp.StatusCode)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("summary JSON: %v", err)
	}
	if len(doc.Groups) != 1 || doc.Groups[0].Display != "01.03.2024 10:15" {
		t.Errorf("groups = %+v", doc.Groups)
	}

	resp, body = get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	_, body = get(t, ts, "/metrics")
	if !strings.Contains(body, "av_summary_groups 1") {
		t.Error("metrics should expose the group gauge")
	}

	resp, _ = get(t, ts, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route = %d", resp.StatusCode)
	}
}

// =============================================================================
// Reload
// =============================================================================

func TestReload_SkipsUnchanged(t *testing.T) {
	srv, path := newServer(t, pageV1, nil)
	first := srv.Snapshot()

	changed, err := srv.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if changed || srv.Snapshot() != first {
		t.Error("identical content should keep the current snapshot")
	}

	os.WriteFile(path, []byte(pageV2), 0644)
	changed, err = srv.Reload(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !changed || srv.Snapshot().Summary.GroupCount() != 2 {
		t.Error("new content should publish a new snapshot")
	}
}

func TestReload_ErrorKeepsSnapshot(t *testing.T) {
	srv, path := newServer(t, pageV1, nil)
	first := srv.Snapshot()

	os.Remove(path)
	if _, err := srv.Reload(context.Background()); err == nil {
		t.Fatal("expected error for removed file")
	}
	if srv.Snapshot() != first {
		t.Error("failed reload should keep serving the last snapshot")
	}
}

func TestWatchReload(t *testing.T) {
	srv, path := newServer(t, pageV1, func(o *server.Options) { o.Watch = true })

	os.WriteFile(path, []byte(pageV2), 0644)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Snapshot().Summary.GroupCount() == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not trigger a reload")
}

func TestScheduledReload(t *testing.T) {
	srv, path := newServer(t, pageV1, func(o *server.Options) { o.Refresh = "@every 1s" })

	os.WriteFile(path, []byte(pageV2), 0644)

	deadline := time.Now().Add(4 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Snapshot().Summary.GroupCount() == 2 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("cron schedule did not trigger a reload")
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_RejectsStdin(t *testing.T) {
	if _, err := server.New(server.Options{Source: "-"}); err == nil {
		t.Error("expected error for stdin source")
	}
	if _, err := server.New(server.Options{}); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestStart_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.html")
	os.WriteFile(path, []byte(pageV1), 0644)
	srv, err := server.New(server.Options{Source: path, Refresh: "not a schedule"})
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Stop()
	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}

func TestHandler_BeforeLoad(t *testing.T) {
	srv, err := server.New(server.Options{Source: "/nonexistent.html"})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := get(t, ts, "/")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
