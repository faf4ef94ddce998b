package plotspec

import (
	"fmt"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/stats"
)

// BuildBoxplot draws one notched box per curve, each in its own panel, with the mean
// and the outliers marked. The value axis is vertical.
func BuildBoxplot(table *model.DerivedTable, curves []string, opts Options) (*Spec, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("boxplot without curves: %w", common.ErrorConfig)
	}
	if err := opts.rejectColorBy(KindBox); err != nil {
		return nil, err
	}

	spec := &Spec{Kind: KindBox, Title: opts.Title}
	for _, curve := range curves {
		column, err := table.Column(curve)
		if err != nil {
			return nil, err
		}
		box, err := stats.BoxStatistics(table, curve)
		if err != nil {
			return nil, err
		}

		valueAxis, err := boxValueAxis(table, column, box, opts)
		if err != nil {
			return nil, err
		}

		panel := Panel{
			Title: fmt.Sprintf("Boxplot of %s", column.Label()),
			X:     Axis{Label: column.Label(), Range: model.Clip{Lower: 0, Upper: 2}},
			Y:     valueAxis,
			Box:   box,
		}

		mean := Series{Name: "mean", Curve: curve, X: []float64{1}, Y: []float64{box.Mean}, Marker: MarkerPoints, Color: "#2ca02c", Width: 6}
		panel.Series = append(panel.Series, mean)
		if len(box.Outliers) > 0 {
			outliers := Series{Name: "outliers", Curve: curve, Marker: MarkerPoints, Color: "#ff0000", Width: 4}
			for _, o := range box.Outliers {
				outliers.X = append(outliers.X, 1)
				outliers.Y = append(outliers.Y, o.Value)
			}
			panel.Series = append(panel.Series, outliers)
		}
		panel.References = append(panel.References, opts.ReferenceLines...)
		spec.Panels = append(spec.Panels, panel)
	}
	return spec, nil
}

// boxValueAxis uses the curve bounds unless they are automatic, then it spans whiskers
// and outliers.
func boxValueAxis(table *model.DerivedTable, column model.Column, box *model.BoxStats, opts Options) (Axis, error) {
	style := opts.style(column.Mnemonic)
	axis := Axis{
		Label:    "Values",
		Inverted: opts.InvertY || style.Inverted,
		Log:      opts.LogScaleX || style.Log,
	}
	extent := []float64{box.LowerWhisker, box.UpperWhisker}
	for _, o := range box.Outliers {
		extent = append(extent, o.Value)
	}
	span, err := rangeOf(table, column.Mnemonic, style.Bounds, extent)
	if err != nil {
		return Axis{}, err
	}
	axis.Range = span
	if err := axis.checkLog(column.Mnemonic); err != nil {
		return Axis{}, err
	}
	return axis, nil
}
