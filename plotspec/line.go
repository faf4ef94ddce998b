package plotspec

import (
	"fmt"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
)

// BuildLinePlot lays out one depth track per entry of tracks. A track holds one curve,
// or two sharing the depth axis, the second drawn against its own x axis.
func BuildLinePlot(table *model.DerivedTable, tracks [][]string, opts Options) (*Spec, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("line plot without tracks: %w", common.ErrorConfig)
	}
	colorValues, colorMap, err := opts.colorValues(table)
	if err != nil {
		return nil, err
	}

	spec := &Spec{Kind: KindLine, Title: opts.Title}
	seriesIndex := 0
	for i, track := range tracks {
		if len(track) == 0 || len(track) > 2 {
			return nil, fmt.Errorf("track %d holds %d curves, want 1 or 2: %w", i, len(track), common.ErrorConfig)
		}

		panel := Panel{Y: depthAxis(table, opts.InvertY), ColorMap: colorMap}
		for j, curve := range track {
			column, err := table.Column(curve)
			if err != nil {
				return nil, err
			}
			axis, err := opts.valueAxis(table, column)
			if err != nil {
				return nil, err
			}
			axis.Top = true

			series := depthSeries(table, column, colorValues)
			series.Color = opts.colorOf(curve, seriesIndex)
			series.Width = 1
			seriesIndex++

			if j == 0 {
				panel.X = axis
				panel.Title = column.Label()
			} else {
				panel.SecondaryX = &axis
				series.Secondary = true
				panel.Title = fmt.Sprintf("%s / %s", panel.Title, column.Label())
			}
			panel.Series = append(panel.Series, series)
			if len(track) > 1 {
				panel.Legend = append(panel.Legend, LegendEntry{Label: curve, Color: series.Color})
			}
		}

		panel.References = append(panel.References, boundaryLines(opts.Boundaries)...)
		panel.References = append(panel.References, opts.ReferenceLines...)
		spec.Panels = append(spec.Panels, panel)
	}
	return spec, nil
}

// depthSeries plots column against depth, skipping missing samples and recording the gaps.
func depthSeries(table *model.DerivedTable, column model.Column, colorValues []float64) Series {
	series := Series{Name: column.Mnemonic, Curve: column.Mnemonic, Marker: MarkerLine}
	broken := false
	for i, sample := range column.Samples {
		if !sample.Valid {
			broken = len(series.X) > 0
			continue
		}
		if broken {
			series.Gaps = append(series.Gaps, len(series.X))
			broken = false
		}
		series.X = append(series.X, sample.Value)
		series.Y = append(series.Y, table.Depths[i])
		if colorValues != nil {
			series.ColorValues = append(series.ColorValues, colorValues[i])
		}
	}
	return series
}

func boundaryLines(boundaries []model.Boundary) []ReferenceLine {
	res := make([]ReferenceLine, 0, len(boundaries))
	for _, boundary := range boundaries {
		color := "#2ca02c"
		if boundary.BoundaryType == model.DecreaseBoundary {
			color = "#9467bd"
		}
		res = append(res, ReferenceLine{
			Name:        fmt.Sprintf("%s @ %s", boundary.BoundaryType, utils.FloatString(boundary.DepthValue.Depth, 3)),
			Value:       boundary.DepthValue.Depth,
			Orientation: Horizontal,
			Color:       color,
		})
	}
	return res
}

