package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkChars = []string{" ", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// RenderSparkline creates a textual bar of value (0.0 - 1.0)
func RenderSparkline(val float64, width int) string {
	if width <= 0 {
		return ""
	}

	if math.IsNaN(val) {
		val = 0
	}
	if val < 0 {
		val = 0
	}
	if val > 1 {
		val = 1
	}

	// Calculate fullness
	fullChars := int(val * float64(width))
	remainder := (val * float64(width)) - float64(fullChars)

	var sb strings.Builder
	for i := 0; i < fullChars; i++ {
		sb.WriteString("█")
	}

	if fullChars < width {
		idx := int(remainder * float64(len(sparkChars)))
		// Ensure non-zero values are visible
		if idx == 0 && remainder > 0 {
			idx = 1
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		if idx > 0 {
			sb.WriteString(sparkChars[idx])
		} else {
			sb.WriteString(" ")
		}
	}

	// Pad
	padding := width - fullChars - 1
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}

	return sb.String()
}

// RenderGroupSparkline draws one column per group, scaled to the largest.
// Groups beyond width are folded into the last column by taking the max.
func RenderGroupSparkline(sizes []int, width int) string {
	if len(sizes) == 0 || width <= 0 {
		return ""
	}

	buckets := sizes
	if len(sizes) > width {
		buckets = make([]int, width)
		for i, v := range sizes {
			b := i * width / len(sizes)
			if v > buckets[b] {
				buckets[b] = v
			}
		}
	}

	peak := 0
	for _, v := range buckets {
		if v > peak {
			peak = v
		}
	}

	var sb strings.Builder
	for _, v := range buckets {
		if peak == 0 || v <= 0 {
			sb.WriteString(sparkChars[0])
			continue
		}
		idx := int(math.Ceil(float64(v) / float64(peak) * float64(len(sparkChars)-1)))
		if idx < 1 {
			idx = 1
		}
		sb.WriteString(sparkChars[idx])
	}
	return sb.String()
}

// GetHeatmapColor returns a color based on score (0-1)
func GetHeatmapColor(score float64, t Theme) lipgloss.TerminalColor {
	if score > 0.8 {
		return t.Primary // Peak/High
	} else if score > 0.5 {
		return t.Comment // Mid-High
	} else if score > 0.2 {
		return t.Datetime // Low-Mid
	}
	return t.Secondary // Low
}
