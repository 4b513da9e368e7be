package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/smantzavinos/activity_viewer/pkg/analysis"
	"github.com/smantzavinos/activity_viewer/pkg/model"
)

// ChartBar is one bar of the blocks-per-group chart.
type ChartBar struct {
	Label string
	Value int
}

// chartLayout holds the geometry shared by the SVG and PNG renderers.
type chartLayout struct {
	width, height int
	left, bottom  int
	top, right    int
	barWidth      float64
	maxValue      int
	labelEvery    int
}

const (
	chartBarSlot  = 28
	chartMinWidth = 480
	chartHeight   = 320
)

// ChartBars returns one bar per table row, in row order.
func ChartBars(s *model.Summary, t *model.Table) []ChartBar {
	sizes := analysis.GroupSizes(s, t)
	bars := make([]ChartBar, len(t.Rows))
	for i, row := range t.Rows {
		bars[i] = ChartBar{Label: row.Key.Display(), Value: sizes[i]}
	}
	return bars
}

func newChartLayout(bars []ChartBar) chartLayout {
	l := chartLayout{left: 48, bottom: 56, top: 32, right: 16, height: chartHeight, maxValue: 1}
	l.width = l.left + l.right + len(bars)*chartBarSlot
	if l.width < chartMinWidth {
		l.width = chartMinWidth
	}
	for _, b := range bars {
		if b.Value > l.maxValue {
			l.maxValue = b.Value
		}
	}
	if len(bars) > 0 {
		l.barWidth = float64(l.width-l.left-l.right) / float64(len(bars))
	}
	// A label is ~16 chars of 7px; skip labels so they don't overlap.
	l.labelEvery = 1
	if l.barWidth > 0 {
		for float64(l.labelEvery)*l.barWidth < 60 {
			l.labelEvery++
		}
	}
	return l
}

func (l chartLayout) plotHeight() float64 {
	return float64(l.height - l.top - l.bottom)
}

func (l chartLayout) barRect(i, value int) (x, y, w, h float64) {
	w = l.barWidth * 0.7
	x = float64(l.left) + float64(i)*l.barWidth + (l.barWidth-w)/2
	h = l.plotHeight() * float64(value) / float64(l.maxValue)
	y = float64(l.top) + l.plotHeight() - h
	return x, y, w, h
}

// WriteSVGChart renders bars as an SVG bar chart.
func WriteSVGChart(w io.Writer, bars []ChartBar, title string) error {
	l := newChartLayout(bars)
	canvas := svg.New(w)
	canvas.Start(l.width, l.height)
	canvas.Rect(0, 0, l.width, l.height, "fill:#ffffff")
	canvas.Text(l.left, 20, title, "font-family:sans-serif;font-size:14px;font-weight:bold;fill:#282A36")

	baseY := l.top + int(l.plotHeight())
	canvas.Line(l.left, baseY, l.width-l.right, baseY, "stroke:#6272A4;stroke-width:1")
	canvas.Text(l.left-6, l.top+8, fmt.Sprintf("%d", l.maxValue), "font-family:sans-serif;font-size:10px;text-anchor:end;fill:#555555")
	canvas.Text(l.left-6, baseY, "0", "font-family:sans-serif;font-size:10px;text-anchor:end;fill:#555555")

	for i, b := range bars {
		x, y, bw, bh := l.barRect(i, b.Value)
		canvas.Rect(int(x), int(y), int(bw), int(bh), "fill:#7D56F4")
		canvas.Title(fmt.Sprintf("%s: %d", b.Label, b.Value))
		if i%l.labelEvery == 0 {
			canvas.TranslateRotate(int(x+bw/2), baseY+10, -35)
			canvas.Text(0, 0, b.Label, "font-family:sans-serif;font-size:9px;text-anchor:end;fill:#282A36")
			canvas.Gend()
		}
	}
	canvas.End()
	return nil
}

// WritePNGChart renders bars as a PNG bar chart.
func WritePNGChart(w io.Writer, bars []ChartBar, title string) error {
	l := newChartLayout(bars)
	dc := gg.NewContext(l.width, l.height)
	dc.SetHexColor("#ffffff")
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetHexColor("#282A36")
	dc.DrawString(title, float64(l.left), 20)

	baseY := float64(l.top) + l.plotHeight()
	dc.SetHexColor("#6272A4")
	dc.SetLineWidth(1)
	dc.DrawLine(float64(l.left), baseY, float64(l.width-l.right), baseY)
	dc.Stroke()

	dc.SetHexColor("#555555")
	dc.DrawStringAnchored(fmt.Sprintf("%d", l.maxValue), float64(l.left-6), float64(l.top)+8, 1, 0)
	dc.DrawStringAnchored("0", float64(l.left-6), baseY, 1, 0)

	for i, b := range bars {
		x, y, bw, bh := l.barRect(i, b.Value)
		dc.SetHexColor("#7D56F4")
		dc.DrawRectangle(x, y, bw, bh)
		dc.Fill()
		if i%l.labelEvery == 0 {
			dc.SetHexColor("#282A36")
			dc.DrawStringAnchored(shortLabel(b.Label), x+bw/2, baseY+14, 0.5, 0.5)
		}
	}
	return dc.EncodePNG(w)
}

// shortLabel keeps the HH:MM part of a "DD.MM.YYYY HH:MM" label.
func shortLabel(label string) string {
	if _, hm, ok := strings.Cut(label, " "); ok {
		return hm
	}
	return label
}

// SaveChart writes an SVG or PNG chart depending on path's extension.
func SaveChart(bars []ChartBar, title, path string) error {
	var render func(io.Writer, []ChartBar, string) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		render = WritePNGChart
	case ".svg":
		render = WriteSVGChart
	default:
		return fmt.Errorf("unsupported chart format %q (use .svg or .png)", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render(f, bars, title); err != nil {
		return err
	}
	return f.Close()
}
