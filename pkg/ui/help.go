package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage is a single page of help content.
type HelpPage struct {
	ID      string
	Title   string
	Content string // Markdown
}

// HelpModel is the paged help overlay opened with `?`.
type HelpModel struct {
	pages        []HelpPage
	currentPage  int
	scrollOffset int
	width        int
	height       int
	theme        Theme

	markdown    *MarkdownRenderer
	shouldClose bool
}

// NewHelpModel creates the help overlay with the default pages.
func NewHelpModel(theme Theme, dark bool) HelpModel {
	return HelpModel{
		pages:    defaultHelpPages(),
		width:    80,
		height:   24,
		theme:    theme,
		markdown: NewMarkdownRenderer(80-6, dark),
	}
}

// Update handles keys while help is open.
func (m HelpModel) Update(msg tea.Msg) (HelpModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q", "?":
		m.shouldClose = true
	case "right", "l", "n", " ", "tab":
		m.NextPage()
	case "left", "h", "p", "shift+tab":
		m.PrevPage()
	case "down", "j":
		m.scrollOffset++
	case "up", "k":
		if m.scrollOffset > 0 {
			m.scrollOffset--
		}
	case "home", "g":
		m.JumpToPage(0)
	case "end", "G":
		m.JumpToPage(len(m.pages) - 1)
	}
	return m, nil
}

// NextPage advances one page, stopping at the last.
func (m *HelpModel) NextPage() {
	if m.currentPage < len(m.pages)-1 {
		m.currentPage++
		m.scrollOffset = 0
	}
}

// PrevPage goes back one page, stopping at the first.
func (m *HelpModel) PrevPage() {
	if m.currentPage > 0 {
		m.currentPage--
		m.scrollOffset = 0
	}
}

// JumpToPage moves to index when it is in range.
func (m *HelpModel) JumpToPage(index int) {
	if index >= 0 && index < len(m.pages) {
		m.currentPage = index
		m.scrollOffset = 0
	}
}

// CurrentPageID returns the ID of the page on screen.
func (m HelpModel) CurrentPageID() string {
	if m.currentPage < 0 || m.currentPage >= len(m.pages) {
		return ""
	}
	return m.pages[m.currentPage].ID
}

// ShouldClose reports whether the user asked to leave help.
func (m HelpModel) ShouldClose() bool { return m.shouldClose }

// ResetClose clears the close request so help can be reopened.
func (m *HelpModel) ResetClose() { m.shouldClose = false }

// SetSize sets the overlay size.
func (m *HelpModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.markdown.SetWidth(width - 6)
}

func (m HelpModel) View() string {
	if len(m.pages) == 0 {
		return ""
	}
	r := m.theme.Renderer
	page := m.pages[m.currentPage]

	var b strings.Builder
	b.WriteString(m.renderHeader(len(m.pages)))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(m.theme.Border).Render(strings.Repeat("─", max(m.width-6, 10))))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(page.Title))
	b.WriteString("\n\n")
	b.WriteString(m.renderContent(page))
	b.WriteString("\n\n")
	b.WriteString(r.NewStyle().Foreground(m.theme.Subtext).Render("←/→ page • ↑/↓ scroll • esc close"))

	return r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Primary).
		Padding(1, 2).
		Width(m.width).
		MaxHeight(m.height).
		Render(b.String())
}

// renderHeader renders the title with a page counter and progress bar.
func (m HelpModel) renderHeader(totalPages int) string {
	r := m.theme.Renderer
	pageNum := m.currentPage + 1

	barWidth := 10
	filled := (pageNum * barWidth) / totalPages
	bar := r.NewStyle().Foreground(m.theme.Success).Render(strings.Repeat("█", filled)) +
		r.NewStyle().Foreground(m.theme.Muted).Render(strings.Repeat("░", barWidth-filled))

	title := r.NewStyle().Bold(true).Foreground(m.theme.Primary).Render("Activity viewer help")
	counter := r.NewStyle().Foreground(m.theme.Subtext).Render(fmt.Sprintf("[%d/%d]", pageNum, totalPages))
	return title + "  " + counter + " " + bar
}

// renderContent renders the page markdown and applies scrolling.
func (m HelpModel) renderContent(page HelpPage) string {
	lines := strings.Split(m.markdown.Render(page.Content), "\n")

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	maxScroll := len(lines) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	offset := m.scrollOffset
	if offset > maxScroll {
		offset = maxScroll
	}
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}

	content := strings.Join(lines[offset:end], "\n")
	hint := m.theme.Renderer.NewStyle().Foreground(m.theme.Muted)
	if offset > 0 {
		content = hint.Render("↑ more above") + "\n" + content
	}
	if end < len(lines) {
		content += "\n" + hint.Render("↓ more below")
	}
	return content
}

func defaultHelpPages() []HelpPage {
	return []HelpPage{
		{
			ID:    "overview",
			Title: "What you are looking at",
			Content: `Each row is one **minute** of activity. Every block on the page whose
timestamp falls in the same minute is merged into a single row.

| Column | Contents |
|---|---|
| Datetime | the minute, as DD.MM.YYYY HH:MM |
| User | everyone who acted in that minute |
| Comments | comment bodies posted in that minute |
| other columns | the new value of each changed field |

Values inside a cell are de-duplicated and keep the order they first
appeared in on the page.`,
		},
		{
			ID:    "navigation",
			Title: "Moving around",
			Content: `| Key | Action |
|---|---|
| ↑ ↓ / j k | previous / next row |
| ← → / h l | previous / next column |
| pgup pgdn | page up / down |
| enter, space | show the full cell |
| ? | this help |
| q | quit |`,
		},
		{
			ID:    "resize",
			Title: "Resizing columns",
			Content: `Drag the right edge of a column header with the mouse, or focus a
column and press **<** / **>** to shrink or grow it.

* **r** resets the focused column to fit its content.
* **R** resets every column.

Columns never get narrower than five cells, and the last column has no
draggable edge.`,
		},
		{
			ID:    "export",
			Title: "Exporting",
			Content: "Press **e** to write the table to `activity_summary.csv`. Every cell is " +
				"quoted, so commas and quotes inside values survive a round trip.\n\n" +
				"Press **y** to copy the focused cell to the clipboard.",
		},
	}
}
