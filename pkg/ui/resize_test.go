package ui_test

import (
	"reflect"
	"testing"

	"github.com/smantzavinos/activity_viewer/pkg/model"
	"github.com/smantzavinos/activity_viewer/pkg/ui"
)

func TestNaturalWidths(t *testing.T) {
	tbl := &model.Table{
		Headers: []string{"Datetime", "User", "Statuss"},
		Rows: []model.TableRow{
			{Cells: []string{"01.03.2024 10:15", "Jānis", "Atvērts"}},
			{Cells: []string{"01.03.2024 10:16", "日本語テキスト", "a very long value that keeps going and going on"}},
		},
	}
	got := ui.NaturalWidths(tbl, 20)
	want := []int{16, 14, 20}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NaturalWidths = %v, want %v", got, want)
	}

	short := &model.Table{Headers: []string{"A"}}
	if got := ui.NaturalWidths(short, 0); got[0] != ui.MinColumnWidth {
		t.Errorf("narrow column should be raised to the minimum, got %d", got[0])
	}
}

func TestResizeController_Drag(t *testing.T) {
	c := ui.NewResizeController([]int{10, 8, 6}, 2)

	if c.Begin(2, 0) {
		t.Error("last column must not be draggable")
	}
	if !c.Begin(0, 11) {
		t.Fatal("Begin on first column failed")
	}
	if col, ok := c.Dragging(); !ok || col != 0 {
		t.Errorf("Dragging = %d, %v", col, ok)
	}

	if w, ok := c.Move(16); !ok || w != 15 {
		t.Errorf("Move(+5) = %d, %v; want 15", w, ok)
	}
	if w, _ := c.Move(-100); w != ui.MinColumnWidth {
		t.Errorf("width should floor at %d, got %d", ui.MinColumnWidth, w)
	}
	c.End()
	if _, ok := c.Move(30); ok {
		t.Error("Move after End should report !ok")
	}
	if c.Width(0) != ui.MinColumnWidth {
		t.Errorf("width after drag = %d", c.Width(0))
	}
}

func TestResizeController_Reset(t *testing.T) {
	c := ui.NewResizeController([]int{10, 8, 6}, 2)
	c.Resize(0, 4)
	c.Resize(1, -20)
	c.Resize(2, 3)

	c.Reset(0)
	if got := c.Widths(); !reflect.DeepEqual(got, []int{10, ui.MinColumnWidth, 9}) {
		t.Errorf("after Reset(0): %v", got)
	}
	c.ResetAll()
	if got := c.Widths(); !reflect.DeepEqual(got, []int{10, 8, 6}) {
		t.Errorf("after ResetAll: %v", got)
	}
	c.Reset(9) // out of range is ignored
}

func TestResizeController_BoundaryAt(t *testing.T) {
	// Columns occupy [0,12) [12,22) [22,30) with padding 2.
	c := ui.NewResizeController([]int{10, 8, 6}, 2)

	tests := []struct {
		x      int
		want   int
		wantOK bool
	}{
		{11, 0, true},
		{10, 0, true},
		{12, 0, true},
		{21, 1, true},
		{5, 0, false},
		{29, 0, false}, // last column's edge is not draggable
	}
	for _, tt := range tests {
		col, ok := c.BoundaryAt(tt.x)
		if ok != tt.wantOK || (ok && col != tt.want) {
			t.Errorf("BoundaryAt(%d) = %d, %v; want %d, %v", tt.x, col, ok, tt.want, tt.wantOK)
		}
	}

	if col, ok := c.ColumnAt(15); !ok || col != 1 {
		t.Errorf("ColumnAt(15) = %d, %v", col, ok)
	}
	if _, ok := c.ColumnAt(40); ok {
		t.Error("ColumnAt past the table should be !ok")
	}
}

func TestResizeController_Independent(t *testing.T) {
	a := ui.NewResizeController([]int{10, 10}, 2)
	b := ui.NewResizeController([]int{10, 10}, 2)
	a.Begin(0, 0)
	if _, ok := b.Dragging(); ok {
		t.Error("controllers must not share drag state")
	}
	a.Move(5)
	if b.Width(0) != 10 {
		t.Error("controllers must not share widths")
	}
}

func TestResizeController_KeepUserWidths(t *testing.T) {
	prev := ui.NewResizeController([]int{10, 10, 10}, 2)
	prev.Resize(1, 6)

	next := ui.NewResizeController([]int{12, 8, 20}, 2)
	next.KeepUserWidths(prev)
	if got := next.Widths(); !reflect.DeepEqual(got, []int{12, 16, 20}) {
		t.Errorf("Widths = %v, want [12 16 20]", got)
	}
	next.Reset(1)
	if got := next.Width(1); got != 8 {
		t.Errorf("Reset should return to the new natural width, got %d", got)
	}

	other := ui.NewResizeController([]int{12, 8}, 2)
	other.KeepUserWidths(prev)
	other.KeepUserWidths(nil)
	if got := other.Widths(); !reflect.DeepEqual(got, []int{12, 8}) {
		t.Errorf("mismatched column counts should copy nothing, got %v", got)
	}
}
