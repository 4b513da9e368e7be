package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/activity_viewer/pkg/analysis"
	"github.com/smantzavinos/activity_viewer/pkg/export"
	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// columnPadding is the horizontal padding the header and cell styles add
// around every column (Padding(0, 1)).
const columnPadding = 2

// Screen rows above the table body: the title line, then the header text
// and its bottom border.
const (
	titleLines  = 1
	headerFirst = titleLines
	headerLast  = titleLines + 1
)

// ReloadFunc re-reads the source and returns a fresh summary.
type ReloadFunc func() (*model.Summary, *model.Table, error)

// fileChangedMsg is sent when the watched source changes.
type fileChangedMsg struct{}

// Option configures a Model.
type Option func(*Model)

// WithSource sets the source name shown in the title bar.
func WithSource(src string) Option {
	return func(m *Model) { m.source = src }
}

// WithExportPath sets where `e` writes the CSV.
func WithExportPath(path string) Option {
	return func(m *Model) { m.exportPath = path }
}

// WithClipboard replaces the clipboard writer used by `y`.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copyFn = write }
}

// WithReload re-reads the source with fn every time changes fires.
func WithReload(changes <-chan struct{}, fn ReloadFunc) Option {
	return func(m *Model) {
		m.changes = changes
		m.reload = fn
	}
}

// WithDarkBackground selects the dark markdown style for help.
func WithDarkBackground(dark bool) Option {
	return func(m *Model) { m.dark = dark }
}

// WithTheme overrides the default theme.
func WithTheme(t Theme) Option {
	return func(m *Model) {
		m.theme = t
		m.themeSet = true
	}
}

// Model is the interactive summary table.
type Model struct {
	summary *model.Summary
	data    *model.Table

	tbl     table.Model
	resize  *ResizeController
	focused int

	theme    Theme
	themeSet bool
	dark     bool

	help     HelpModel
	showHelp bool

	showDetail bool
	status     string
	statusErr  bool

	source     string
	exportPath string
	copyFn     func(string) error
	changes    <-chan struct{}
	reload     ReloadFunc

	width  int
	height int
}

// NewModel builds the viewer for an already consolidated summary.
func NewModel(s *model.Summary, t *model.Table, opts ...Option) Model {
	m := Model{
		exportPath: export.DefaultCSVFilename,
		copyFn:     clipboard.WriteAll,
		width:      100,
		height:     30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if !m.themeSet {
		m.theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	m.help = NewHelpModel(m.theme, m.dark)

	styles := table.DefaultStyles()
	styles.Header = m.theme.Header
	styles.Cell = m.theme.Cell
	styles.Selected = m.theme.Selected

	m.tbl = table.New(
		table.WithFocused(true),
		table.WithStyles(styles),
	)
	m.setData(s, t)
	m.layout()
	return m
}

func (m *Model) setData(s *model.Summary, t *model.Table) {
	if t == nil {
		t = &model.Table{}
	}
	prev, prevHeaders := m.resize, []string(nil)
	if m.data != nil {
		prevHeaders = m.data.Headers
	}
	m.summary = s
	m.data = t
	m.resize = NewResizeController(NaturalWidths(t, DefaultMaxNaturalWidth), columnPadding)
	// Same columns after a reload: keep what the user dragged.
	if slices.Equal(prevHeaders, t.Headers) {
		m.resize.KeepUserWidths(prev)
	}
	if m.focused >= len(t.Headers) {
		m.focused = max(len(t.Headers)-1, 0)
	}

	rows := make([]table.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = table.Row(r.Cells)
	}
	// Rows must never be wider than the columns, so clear them first.
	m.tbl.SetRows(nil)
	m.applyColumns()
	m.tbl.SetRows(rows)
	if c := m.tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.tbl.SetCursor(len(rows) - 1)
	}
}

// applyColumns pushes the controller's widths into the table.
func (m *Model) applyColumns() {
	cols := make([]table.Column, len(m.data.Headers))
	for i, h := range m.data.Headers {
		title := h
		if i == m.focused {
			title = "▸" + h
		}
		cols[i] = table.Column{Title: title, Width: m.resize.Width(i)}
	}
	m.tbl.SetColumns(cols)
}

func (m *Model) layout() {
	// title + status bar
	m.tbl.SetHeight(max(m.height-2, 3))
	m.tbl.SetWidth(m.width)
	m.help.SetSize(min(m.width-4, 90), m.height-2)
}

func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil || m.reload == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case fileChangedMsg:
		s, t, err := m.reload()
		if err != nil {
			m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		} else {
			m.setData(s, t)
			m.setStatus(fmt.Sprintf("reloaded: %d groups", s.GroupCount()), false)
		}
		return m, m.waitForChange()

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.showHelp {
			var cmd tea.Cmd
			m.help, cmd = m.help.Update(msg)
			if m.help.ShouldClose() {
				m.help.ResetClose()
				m.showHelp = false
			}
			return m, cmd
		}
		if m.showDetail {
			switch msg.String() {
			case "esc", "enter", " ", "q":
				m.showDetail = false
			case "y":
				m.copyCell()
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.focus(m.focused - 1)
	case "right", "l":
		m.focus(m.focused + 1)
	case "<", "-":
		m.resize.Resize(m.focused, -1)
		m.applyColumns()
	case ">", "+":
		m.resize.Resize(m.focused, 1)
		m.applyColumns()
	case "r":
		m.resize.Reset(m.focused)
		m.applyColumns()
	case "R":
		m.resize.ResetAll()
		m.applyColumns()
	case "enter", " ":
		if len(m.data.Rows) > 0 {
			m.showDetail = true
		}
	case "e":
		m.exportCSV()
	case "y":
		m.copyCell()
	case "?":
		m.showHelp = true
	default:
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if msg.Y >= headerFirst && msg.Y <= headerLast {
				if col, ok := m.resize.BoundaryAt(msg.X); ok {
					m.resize.Begin(col, msg.X)
					return m
				}
			}
			if col, ok := m.resize.ColumnAt(msg.X); ok {
				m.focus(col)
			}
		case tea.MouseButtonWheelUp:
			m.tbl.MoveUp(1)
		case tea.MouseButtonWheelDown:
			m.tbl.MoveDown(1)
		}
	case tea.MouseActionMotion:
		if _, ok := m.resize.Move(msg.X); ok {
			m.applyColumns()
		}
	case tea.MouseActionRelease:
		if _, ok := m.resize.Dragging(); ok {
			m.resize.End()
			m.applyColumns()
		}
	}
	return m
}

func (m *Model) focus(col int) {
	if col < 0 || col >= len(m.data.Headers) {
		return
	}
	m.focused = col
	m.applyColumns()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *Model) exportCSV() {
	if err := export.SaveCSVToFile(m.data, m.exportPath); err != nil {
		m.setStatus(fmt.Sprintf("export failed: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("exported %d rows to %s", len(m.data.Rows), m.exportPath), false)
}

func (m *Model) copyCell() {
	cell, ok := m.currentCell()
	if !ok {
		return
	}
	if err := m.copyFn(cell); err != nil {
		m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return
	}
	m.setStatus("copied cell to clipboard", false)
}

func (m Model) currentCell() (string, bool) {
	row, ok := m.currentRow()
	if !ok || m.focused >= len(row.Cells) {
		return "", false
	}
	return row.Cells[m.focused], true
}

func (m Model) currentRow() (model.TableRow, bool) {
	c := m.tbl.Cursor()
	if c < 0 || c >= len(m.data.Rows) {
		return model.TableRow{}, false
	}
	return m.data.Rows[c], true
}

// FocusedColumn returns the index of the focused column.
func (m Model) FocusedColumn() int { return m.focused }

// Cursor returns the selected row.
func (m Model) Cursor() int { return m.tbl.Cursor() }

// Widths returns the current column widths.
func (m Model) Widths() []int { return m.resize.Widths() }

// Status returns the last status-bar message.
func (m Model) Status() string { return m.status }

// HelpOpen reports whether the help overlay is showing.
func (m Model) HelpOpen() bool { return m.showHelp }

// Detail returns the full text of the selected cell while the detail pane
// is open, or "" otherwise.
func (m Model) Detail() string {
	if !m.showDetail {
		return ""
	}
	row, ok := m.currentRow()
	if !ok || m.focused >= len(row.Cells) {
		return ""
	}
	return page.CellTooltip(m.data, row, m.focused)
}

func (m Model) View() string {
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")
	if len(m.data.Headers) == 0 {
		b.WriteString(m.theme.StatusBar.Render("no activity found"))
	} else {
		b.WriteString(m.tbl.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if m.showDetail {
		detail := m.theme.Detail.Width(min(m.width-4, 80)).Render(m.Detail())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, detail)
	}
	return b.String()
}

func (m Model) renderTitle() string {
	title := m.theme.Title.Render("Activity summary")
	if m.source == "" {
		return title
	}
	return title + " " + m.theme.StatusBar.Render(m.source)
}

func (m Model) renderStatus() string {
	r := m.theme.Renderer
	var parts []string

	groups := m.summary.GroupCount()
	parts = append(parts, fmt.Sprintf("%d groups", groups))
	if m.summary != nil && len(m.data.Rows) > 0 {
		spark := RenderGroupSparkline(analysis.GroupSizes(m.summary, m.data), 20)
		parts = append(parts, r.NewStyle().Foreground(m.theme.Primary).Render(spark))
	}
	if m.focused < len(m.data.Headers) {
		h := m.data.Headers[m.focused]
		parts = append(parts, r.NewStyle().Foreground(m.theme.ColumnColor(h)).Render(
			fmt.Sprintf("%s (%d)", h, m.resize.Width(m.focused))))
	}
	if m.status != "" {
		color := m.theme.Success
		if m.statusErr {
			color = m.theme.Error
		}
		parts = append(parts, r.NewStyle().Foreground(color).Render(m.status))
	} else {
		parts = append(parts, "? help")
	}
	return m.theme.StatusBar.Render(strings.Join(parts, " │ "))
}

// Run starts the full-screen viewer with mouse support.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
