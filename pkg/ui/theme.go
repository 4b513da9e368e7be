package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smantzavinos/activity_viewer/pkg/consolidate"
)

type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Columns
	Datetime lipgloss.AdaptiveColor
	User     lipgloss.AdaptiveColor
	Comment  lipgloss.AdaptiveColor
	Field    lipgloss.AdaptiveColor

	// Feedback
	Success lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Styles
	Base      lipgloss.Style
	Selected  lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Detail    lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive)
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		// Dracula / Light Mode equivalent
		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#999999", Dark: "#BFBFBF"}, // Dim
		Muted:     lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#6272A4"},

		Datetime: lipgloss.AdaptiveColor{Light: "#007EA8", Dark: "#8BE9FD"}, // Cyan
		User:     lipgloss.AdaptiveColor{Light: "#00A800", Dark: "#50FA7B"}, // Green
		Comment:  lipgloss.AdaptiveColor{Light: "#D88000", Dark: "#FFB86C"}, // Orange
		Field:    lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"},

		Success: lipgloss.AdaptiveColor{Light: "#00A800", Dark: "#50FA7B"},
		Error:   lipgloss.AdaptiveColor{Light: "#D80000", Dark: "#FF5555"},

		Border:    lipgloss.AdaptiveColor{Light: "#DDDDDD", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#44475A"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Foreground(t.Primary).
		Bold(true)

	t.Header = r.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Border).
		Foreground(t.Primary).
		Bold(true).
		Padding(0, 1)

	t.Cell = r.NewStyle().Padding(0, 1)

	t.Title = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.StatusBar = r.NewStyle().Foreground(t.Subtext)

	t.Detail = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(0, 1)

	return t
}

// ColumnColor returns the accent for a summary column header.
func (t Theme) ColumnColor(header string) lipgloss.AdaptiveColor {
	switch header {
	case consolidate.HeaderDatetime:
		return t.Datetime
	case consolidate.HeaderUser:
		return t.User
	case consolidate.HeaderComments:
		return t.Comment
	default:
		return t.Field
	}
}
