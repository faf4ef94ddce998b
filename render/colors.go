package render

import (
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/uyouii/welllog/plotspec"
)

// parseColor reads "#rrggbb" or "rrggbb"; anything else is black.
func parseColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 3 {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(hex)
}

// colorMapper maps a value to a color of the named map, NaN to fallback.
func colorMapper(cm *plotspec.ColorMap, fallback drawing.Color) func(v float64) drawing.Color {
	return func(v float64) drawing.Color {
		if cm == nil || math.IsNaN(v) {
			return fallback
		}
		// out of range values saturate at the ends of the map
		v = math.Max(cm.Min, math.Min(cm.Max, v))
		if cm.Name == "viridis" {
			return chart.Viridis(v, cm.Min, cm.Max)
		}
		return rainbow(v, cm.Min, cm.Max)
	}
}

// rainbow runs from violet at vmin to red at vmax.
func rainbow(v, vmin, vmax float64) drawing.Color {
	t := 0.0
	if vmax > vmin {
		t = (v - vmin) / (vmax - vmin)
	}
	r, g, b := colorful.Hsv(270*(1-t), 1, 1).RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}
