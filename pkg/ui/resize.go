package ui

import (
	"github.com/mattn/go-runewidth"

	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// MinColumnWidth is the narrowest a column can be dragged or shrunk to.
const MinColumnWidth = 5

// DefaultMaxNaturalWidth caps the natural width of wide columns so one long
// comment does not push every other column off screen.
const DefaultMaxNaturalWidth = 40

// ResizeController owns the column widths of one table and the state of an
// in-progress drag. Each table gets its own controller.
type ResizeController struct {
	widths  []int
	natural []int

	// padding is the horizontal space the table adds around each column.
	padding int

	drag dragState
}

type dragState struct {
	active     bool
	col        int
	startX     int
	startWidth int
}

// NewResizeController starts every column at its natural width.
func NewResizeController(natural []int, padding int) *ResizeController {
	c := &ResizeController{
		natural: make([]int, len(natural)),
		widths:  make([]int, len(natural)),
		padding: padding,
	}
	for i, w := range natural {
		if w < MinColumnWidth {
			w = MinColumnWidth
		}
		c.natural[i] = w
		c.widths[i] = w
	}
	return c
}

// NaturalWidths measures each column as the widest of its header and
// cells in terminal cells, clamped to [MinColumnWidth, maxWidth].
func NaturalWidths(t *model.Table, maxWidth int) []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row.Cells {
			if i >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if maxWidth > 0 && widths[i] > maxWidth {
			widths[i] = maxWidth
		}
		if widths[i] < MinColumnWidth {
			widths[i] = MinColumnWidth
		}
	}
	return widths
}

// Columns returns the number of columns.
func (c *ResizeController) Columns() int { return len(c.widths) }

// Width returns the current width of col, or 0 when out of range.
func (c *ResizeController) Width(col int) int {
	if col < 0 || col >= len(c.widths) {
		return 0
	}
	return c.widths[col]
}

// Widths returns a copy of all current widths.
func (c *ResizeController) Widths() []int {
	out := make([]int, len(c.widths))
	copy(out, c.widths)
	return out
}

// Draggable reports whether col has a boundary that can be dragged. The
// last column has none.
func (c *ResizeController) Draggable(col int) bool {
	return col >= 0 && col < len(c.widths)-1
}

// Begin starts dragging the right boundary of col from screen column x.
func (c *ResizeController) Begin(col, x int) bool {
	if !c.Draggable(col) {
		return false
	}
	c.drag = dragState{active: true, col: col, startX: x, startWidth: c.widths[col]}
	return true
}

// Move updates the dragged column for pointer position x and returns its
// new width. ok is false when no drag is in progress.
func (c *ResizeController) Move(x int) (width int, ok bool) {
	if !c.drag.active {
		return 0, false
	}
	width = c.drag.startWidth + (x - c.drag.startX)
	if width < MinColumnWidth {
		width = MinColumnWidth
	}
	c.widths[c.drag.col] = width
	return width, true
}

// End finishes the current drag. It is a no-op when none is active.
func (c *ResizeController) End() {
	c.drag = dragState{}
}

// Dragging returns the column being dragged.
func (c *ResizeController) Dragging() (col int, ok bool) {
	return c.drag.col, c.drag.active
}

// Resize changes col by delta cells and returns the new width.
func (c *ResizeController) Resize(col, delta int) int {
	if col < 0 || col >= len(c.widths) {
		return 0
	}
	w := c.widths[col] + delta
	if w < MinColumnWidth {
		w = MinColumnWidth
	}
	c.widths[col] = w
	return w
}

// Reset restores col to its natural width.
func (c *ResizeController) Reset(col int) {
	if col < 0 || col >= len(c.widths) {
		return
	}
	c.widths[col] = c.natural[col]
}

// KeepUserWidths copies over every width the user changed in prev. Columns
// left at their natural width follow the new natural width. Nothing is
// copied when the column counts differ.
func (c *ResizeController) KeepUserWidths(prev *ResizeController) {
	if prev == nil || len(prev.widths) != len(c.widths) {
		return
	}
	for i, w := range prev.widths {
		if w != prev.natural[i] {
			c.widths[i] = max(w, MinColumnWidth)
		}
	}
}

// ResetAll restores every column to its natural width and cancels any drag.
func (c *ResizeController) ResetAll() {
	copy(c.widths, c.natural)
	c.End()
}

// BoundaryAt returns the draggable column whose right edge is within one
// cell of screen column x.
func (c *ResizeController) BoundaryAt(x int) (col int, ok bool) {
	edge := -1
	for i, w := range c.widths {
		edge += w + c.padding
		if !c.Draggable(i) {
			break
		}
		if x >= edge-1 && x <= edge+1 {
			return i, true
		}
	}
	return 0, false
}

// ColumnAt returns the column under screen column x.
func (c *ResizeController) ColumnAt(x int) (col int, ok bool) {
	start := 0
	for i, w := range c.widths {
		end := start + w + c.padding
		if x >= start && x < end {
			return i, true
		}
		start = end
	}
	return 0, false
}
