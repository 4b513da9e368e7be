package ui_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
	"github.com/smantzavinos/activity_viewer/pkg/ui"
)

func sampleFixture() *page.Fixture {
	return &page.Fixture{BlockList: []page.FixtureBlock{
		{Time: page.Str("2024-03-01T10:15:42Z"), User: page.Str("anna"), RowList: []page.FixtureRow{page.Change("Statuss", "Jaunā vērtībaAtvērts")}},
		{Time: page.Str("2024-03-01T10:15:59Z"), User: page.Str("janis"), RowList: []page.FixtureRow{page.Change("Statuss", "Jaunā vērtībaAtvērts")}},
		{Time: page.Str("2024-03-01T11:00:05Z"), User: page.Str("ilze"), Comment: true, Body: page.Str("Looks good")},
	}}
}

func sample(f *page.Fixture) (*model.Summary, *model.Table) {
	s := consolidate.Consolidate(f, consolidate.DefaultOptions())
	return s, consolidate.BuildTable(s, consolidate.TableOptions{})
}

func newTestModel(t *testing.T, opts ...ui.Option) ui.Model {
	t.Helper()
	s, tbl := sample(sampleFixture())
	theme := ui.DefaultTheme(lipgloss.NewRenderer(io.Discard))
	opts = append([]ui.Option{ui.WithTheme(theme)}, opts...)
	return ui.NewModel(s, tbl, opts...)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m ui.Model, keys ...string) ui.Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(ui.Model)
	}
	return m
}

func mouse(m ui.Model, action tea.MouseAction, x, y int) ui.Model {
	next, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
	return next.(ui.Model)
}

// =============================================================================
// Navigation
// =============================================================================

func TestModel_FocusMovesAndClamps(t *testing.T) {
	m := newTestModel(t)
	if m.FocusedColumn() != 0 {
		t.Fatalf("initial focus = %d", m.FocusedColumn())
	}
	m = press(m, "h")
	if m.FocusedColumn() != 0 {
		t.Errorf("focus should not go below 0, got %d", m.FocusedColumn())
	}
	m = press(m, "l", "l", "l", "l", "l")
	if m.FocusedColumn() != 3 {
		t.Errorf("focus should stop at the last column, got %d", m.FocusedColumn())
	}
}

func TestModel_RowCursor(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "down")
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}
	m = press(m, "down")
	if m.Cursor() != 1 {
		t.Errorf("cursor should stay on the last row, got %d", m.Cursor())
	}
}

// =============================================================================
// Resizing
// =============================================================================

func TestModel_KeyboardResize(t *testing.T) {
	m := newTestModel(t)
	natural := []int{16, 11, 10, 7}
	if got := m.Widths(); !reflect.DeepEqual(got, natural) {
		t.Fatalf("natural widths = %v, want %v", got, natural)
	}

	m = press(m, "l", ">", ">", ">")
	if got := m.Widths()[1]; got != 14 {
		t.Errorf("after 3x '>' width = %d, want 14", got)
	}
	m = press(m, "<")
	if got := m.Widths()[1]; got != 13 {
		t.Errorf("after '<' width = %d, want 13", got)
	}

	m = press(m, "l", "-", "-")
	m = press(m, "r")
	if got := m.Widths(); got[2] != 10 || got[1] != 13 {
		t.Errorf("'r' should reset only the focused column: %v", got)
	}

	m = press(m, "R")
	if got := m.Widths(); !reflect.DeepEqual(got, natural) {
		t.Errorf("'R' should reset all columns: %v", got)
	}
}

func TestModel_MouseDrag(t *testing.T) {
	m := newTestModel(t)

	// Column 0 spans 16 cells plus 2 of padding; its edge is at x=17.
	m = mouse(m, tea.MouseActionPress, 17, 1)
	m = mouse(m, tea.MouseActionMotion, 21, 1)
	if got := m.Widths()[0]; got != 20 {
		t.Errorf("width while dragging = %d, want 20", got)
	}
	m = mouse(m, tea.MouseActionRelease, 21, 1)
	m = mouse(m, tea.MouseActionMotion, 40, 1)
	if got := m.Widths()[0]; got != 20 {
		t.Errorf("motion after release should not resize, got %d", got)
	}
}

func TestModel_ClickFocusesColumn(t *testing.T) {
	m := newTestModel(t)
	// Body row, inside the User column.
	m = mouse(m, tea.MouseActionPress, 20, 4)
	if m.FocusedColumn() != 1 {
		t.Errorf("focus = %d, want 1", m.FocusedColumn())
	}
}

// =============================================================================
// Detail, export, clipboard
// =============================================================================

func TestModel_Detail(t *testing.T) {
	m := newTestModel(t)
	if m.Detail() != "" {
		t.Fatal("detail should be empty while closed")
	}
	m = press(m, "l", "enter")
	want := "User\n01.03.2024 10:15: anna, janis\n\nFull content:\nanna, janis"
	if got := m.Detail(); got != want {
		t.Errorf("Detail =\n%q\nwant\n%q", got, want)
	}
	if !strings.Contains(m.View(), "Full content:") {
		t.Error("view should show the detail pane")
	}
	m = press(m, "esc")
	if m.Detail() != "" {
		t.Error("esc should close the detail pane")
	}
	m = press(m, " ")
	if m.Detail() == "" {
		t.Error("space should open the detail pane")
	}
}

func TestModel_ExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), export.DefaultCSVFilename)
	m := newTestModel(t, ui.WithExportPath(path))
	m = press(m, "e")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	_, tbl := sample(sampleFixture())
	if string(data) != export.EncodeCSV(tbl) {
		t.Errorf("exported CSV mismatch:\n%s", data)
	}
	if !strings.Contains(m.Status(), "exported 2 rows") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestModel_CopyCell(t *testing.T) {
	var copied string
	m := newTestModel(t, ui.WithClipboard(func(s string) error {
		copied = s
		return nil
	}))
	m = press(m, "down", "l", "l", "y")
	if copied != "Looks good" {
		t.Errorf("copied %q", copied)
	}

	m = newTestModel(t, ui.WithClipboard(func(string) error { return errors.New("no clipboard") }))
	m = press(m, "y")
	if !strings.Contains(m.Status(), "no clipboard") {
		t.Errorf("status = %q", m.Status())
	}
}

// =============================================================================
// Help, quit, reload
// =============================================================================

func TestModel_Help(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "?")
	if !m.HelpOpen() {
		t.Fatal("? should open help")
	}
	// Keys go to help while it is open.
	m = press(m, "l")
	if m.FocusedColumn() != 0 {
		t.Error("help should swallow navigation keys")
	}
	m = press(m, "esc")
	if m.HelpOpen() {
		t.Error("esc should close help")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_Reload(t *testing.T) {
	changes := make(chan struct{}, 1)
	f := sampleFixture()
	m := newTestModel(t, ui.WithReload(changes, func() (*model.Summary, *model.Table, error) {
		f.BlockList = append(f.BlockList, page.FixtureBlock{
			Time: page.Str("2024-03-01T12:30:00Z"), User: page.Str("peteris"),
		})
		s, tbl := sample(f)
		return s, tbl, nil
	}))

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should wait for changes")
	}
	changes <- struct{}{}
	next, again := m.Update(cmd())
	m = next.(ui.Model)

	if !strings.Contains(m.Status(), "reloaded: 3 groups") {
		t.Errorf("status = %q", m.Status())
	}
	if again == nil {
		t.Error("model should keep waiting for changes")
	}
	if !strings.Contains(m.View(), "peteris") {
		t.Error("view should show reloaded rows")
	}
}

func TestModel_ReloadKeepsResizedColumns(t *testing.T) {
	changes := make(chan struct{}, 1)
	m := newTestModel(t, ui.WithReload(changes, func() (*model.Summary, *model.Table, error) {
		f := sampleFixture()
		f.BlockList = append(f.BlockList, page.FixtureBlock{
			Time: page.Str("2024-03-01T12:30:00Z"), User: page.Str("peteris"),
		})
		s, tbl := sample(f)
		return s, tbl, nil
	}))
	m = press(m, "l", ">", ">", ">")

	cmd := m.Init()
	changes <- struct{}{}
	next, _ := m.Update(cmd())
	m = next.(ui.Model)

	if got := m.Widths(); !reflect.DeepEqual(got, []int{16, 14, 10, 7}) {
		t.Errorf("widths after reload = %v, want the dragged User width kept", got)
	}
}

func TestModel_EmptyTable(t *testing.T) {
	theme := ui.DefaultTheme(lipgloss.NewRenderer(io.Discard))
	s, tbl := sample(&page.Fixture{})
	m := ui.NewModel(s, tbl, ui.WithTheme(theme))
	m = press(m, "enter", "y", ">")
	if m.Detail() != "" {
		t.Error("detail should not open without rows")
	}
}
