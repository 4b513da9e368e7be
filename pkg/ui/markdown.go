package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for the terminal with glamour, caching
// the underlying renderer per width.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdownRenderer creates a renderer wrapping at width. dark selects
// the dark or light glamour style.
func NewMarkdownRenderer(width int, dark bool) *MarkdownRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	m := &MarkdownRenderer{style: style}
	m.SetWidth(width)
	return m
}

// SetWidth changes the wrap width, rebuilding the renderer if needed.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == m.width && m.renderer != nil {
		return
	}
	m.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// Render returns the styled text, or the raw markdown if glamour fails.
func (m *MarkdownRenderer) Render(md string) string {
	if m == nil || m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
