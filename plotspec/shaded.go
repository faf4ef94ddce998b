package plotspec

import (
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/stats"
)

// BuildShadedPlot draws curve on a depth track and fills between threshold and the curve,
// one fill per classified run, colored by its category.
func BuildShadedPlot(table *model.DerivedTable, curve string, threshold float64, opts Options) (*Spec, error) {
	labels := opts.Labels
	if labels == (model.CategoryLabels{}) {
		labels = model.LithologyLabels
	}
	runs, err := stats.Classify(table, curve, threshold, labels)
	if err != nil {
		return nil, err
	}
	column, err := table.Column(curve)
	if err != nil {
		return nil, err
	}
	colorValues, colorMap, err := opts.colorValues(table)
	if err != nil {
		return nil, err
	}
	xAxis, err := opts.valueAxis(table, column)
	if err != nil {
		return nil, err
	}
	xAxis.Top = true

	belowColor, aboveColor := opts.BelowColor, opts.AboveColor
	if belowColor == "" {
		belowColor = DefaultOptions().BelowColor
	}
	if aboveColor == "" {
		aboveColor = DefaultOptions().AboveColor
	}
	colors := map[string]string{labels.Below: belowColor, labels.Above: aboveColor}

	series := depthSeries(table, column, colorValues)
	series.Color = opts.colorOf(curve, 0)
	series.Width = 0.5

	panel := Panel{
		Title:    column.Label(),
		X:        xAxis,
		Y:        depthAxis(table, opts.InvertY),
		Series:   []Series{series},
		ColorMap: colorMap,
		Legend: []LegendEntry{
			{Label: labels.Below, Color: belowColor},
			{Label: labels.Above, Color: aboveColor},
		},
	}

	// runs are ordered by depth and never overlap, so one pass pairs samples with runs
	i := 0
	for _, run := range runs {
		fill := Fill{Label: run.Category, Color: colors[run.Category], Baseline: threshold}
		for ; i < table.Len() && table.Depths[i] <= run.Base; i++ {
			sample := column.Samples[i]
			if table.Depths[i] < run.Top || !sample.Valid {
				continue
			}
			fill.Depths = append(fill.Depths, table.Depths[i])
			fill.Values = append(fill.Values, sample.Value)
		}
		panel.Fills = append(panel.Fills, fill)
	}

	panel.References = append(panel.References, ReferenceLine{
		Name:        "threshold",
		Value:       threshold,
		Orientation: Vertical,
		Color:       "#7f7f7f",
	})
	panel.References = append(panel.References, boundaryLines(opts.Boundaries)...)
	panel.References = append(panel.References, opts.ReferenceLines...)

	return &Spec{Kind: KindShaded, Title: opts.Title, Panels: []Panel{panel}}, nil
}
