package plotspec

import (
	"fmt"
	"math"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

// BuildCrossplot scatters curve y against curve x. Rows where either curve, or the
// color-by curve, is missing are left out.
func BuildCrossplot(table *model.DerivedTable, x, y string, opts Options) (*Spec, error) {
	xColumn, err := table.Column(x)
	if err != nil {
		return nil, err
	}
	yColumn, err := table.Column(y)
	if err != nil {
		return nil, err
	}
	colorValues, colorMap, err := opts.colorValues(table)
	if err != nil {
		return nil, err
	}

	series := Series{
		Name:   fmt.Sprintf("%s vs %s", y, x),
		Curve:  y,
		Marker: MarkerPoints,
		Color:  opts.colorOf(y, 0),
		Width:  3,
	}
	for i := range table.Depths {
		xs, ys := xColumn.Samples[i], yColumn.Samples[i]
		if !xs.Valid || !ys.Valid {
			continue
		}
		if colorValues != nil && math.IsNaN(colorValues[i]) {
			continue
		}
		series.X = append(series.X, xs.Value)
		series.Y = append(series.Y, ys.Value)
		if colorValues != nil {
			series.ColorValues = append(series.ColorValues, colorValues[i])
		}
	}
	if len(series.X) == 0 {
		return nil, fmt.Errorf("no depth has both %q and %q: %w", x, y, common.ErrorEmptyInput)
	}

	xAxis, err := crossAxis(table, xColumn, series.X, opts.style(x), opts.InvertX, opts.LogScaleX)
	if err != nil {
		return nil, err
	}
	yAxis, err := crossAxis(table, yColumn, series.Y, opts.style(y), opts.InvertY, false)
	if err != nil {
		return nil, err
	}

	panel := Panel{
		Title:      fmt.Sprintf("%s vs %s", yColumn.Label(), xColumn.Label()),
		X:          xAxis,
		Y:          yAxis,
		Series:     []Series{series},
		References: append([]ReferenceLine(nil), opts.ReferenceLines...),
		ColorMap:   colorMap,
	}
	return &Spec{Kind: KindCrossplot, Title: opts.Title, Panels: []Panel{panel}}, nil
}

// crossAxis uses the plotted points for automatic bounds so dropped rows do not widen the range.
func crossAxis(table *model.DerivedTable, column model.Column, plotted []float64, style CurveStyle, invert, log bool) (Axis, error) {
	axis := Axis{
		Label:    column.Label(),
		Inverted: invert || style.Inverted,
		Log:      log || style.Log,
	}
	span, err := rangeOf(table, column.Mnemonic, style.Bounds, plotted)
	if err != nil {
		return Axis{}, err
	}
	axis.Range = span
	if err := axis.checkLog(column.Mnemonic); err != nil {
		return Axis{}, err
	}
	return axis, nil
}
