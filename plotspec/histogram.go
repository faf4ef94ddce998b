package plotspec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/kde"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/stats"
)

var statisticColors = map[string]string{
	"mean": "#1f77b4",
	"p5":   "#2ca02c",
	"p95":  "#9467bd",
}

// BuildHistogram bins the non-missing samples of curve over their data range. The x axis
// range comes from the curve bounds and only limits the view.
func BuildHistogram(table *model.DerivedTable, curve string, opts Options) (*Spec, error) {
	if err := opts.rejectColorBy(KindHistogram); err != nil {
		return nil, err
	}
	column, err := table.Column(curve)
	if err != nil {
		return nil, err
	}
	values, err := table.Values(curve)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}

	binCount := opts.Bins
	if binCount == 0 {
		binCount = DefaultBins
	}
	bins, err := stats.Histogram(values, binCount, nil, opts.Density)
	if err != nil {
		return nil, err
	}

	xAxis, err := opts.valueAxis(table, column)
	if err != nil {
		return nil, err
	}
	yLabel := "Count"
	if opts.Density {
		yLabel = "Density"
	}
	panel := Panel{
		Title: column.Label(),
		X:     xAxis,
		Y:     Axis{Label: yLabel, Inverted: opts.InvertY},
		Bins:  bins,
	}

	top := 0.0
	for _, bin := range bins {
		top = math.Max(top, bin.Count)
	}

	if opts.KDE {
		series, err := densitySeries(values, bins, opts.Density, opts.Smoothing)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", curve, err)
		}
		series.Name = "KDE"
		series.Curve = curve
		series.Color = "#000000"
		for _, y := range series.Y {
			top = math.Max(top, y)
		}
		panel.Series = append(panel.Series, series)
		panel.Legend = append(panel.Legend, LegendEntry{Label: series.Name, Color: series.Color})
	}
	panel.Y.Range = model.Clip{Lower: 0, Upper: top * 1.05}

	marks, err := statisticLines(values, opts.MarkStatistics)
	if err != nil {
		return nil, err
	}
	panel.References = append(panel.References, marks...)
	panel.References = append(panel.References, opts.ReferenceLines...)
	for _, ref := range panel.References {
		panel.Legend = append(panel.Legend, LegendEntry{Label: ref.Name, Color: ref.Color})
	}

	return &Spec{Kind: KindHistogram, Title: opts.Title, Panels: []Panel{panel}}, nil
}

// densitySeries evaluates a kernel density estimate, scaled to counts unless the bars
// are densities too.
func densitySeries(values []float64, bins []model.Bin, density bool, smoothing *kde.Options) (Series, error) {
	kdeOpts := kde.DefaultOptions()
	if smoothing != nil {
		kdeOpts = *smoothing
	}
	k, err := kde.NewEstimator(values, kdeOpts)
	if err != nil {
		return Series{}, err
	}
	points, _, err := k.Kdensity()
	if err != nil {
		return Series{}, err
	}

	scale := 1.0
	if !density {
		scale = float64(len(values)) * (bins[0].Upper - bins[0].Lower)
	}
	series := Series{Marker: MarkerLine, Width: 1.5}
	for _, p := range points {
		series.X = append(series.X, p.X)
		series.Y = append(series.Y, p.Value*scale)
	}
	return series, nil
}

func statisticLines(values []float64, names []string) ([]ReferenceLine, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	res := make([]ReferenceLine, 0, len(names))
	for i, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		line := ReferenceLine{Orientation: Vertical, Color: statisticColors[key]}
		switch {
		case key == "mean":
			line.Name = "mean"
			line.Value = stat.Mean(sorted, nil)
		case key == "median":
			line.Name = "median"
			line.Value = stats.Percentile(sorted, 0.5)
		case strings.HasPrefix(key, "p"):
			p, err := strconv.ParseFloat(key[1:], 64)
			if err != nil || !(p >= 0 && p <= 100) {
				return nil, fmt.Errorf("unknown statistic %q: %w", name, common.ErrorConfig)
			}
			line.Name = fmt.Sprintf("%sth percentile", key[1:])
			line.Value = stats.Percentile(sorted, p/100)
		default:
			return nil, fmt.Errorf("unknown statistic %q: %w", name, common.ErrorConfig)
		}
		if line.Color == "" {
			line.Color = palette[(i+1)%len(palette)]
		}
		res = append(res, line)
	}
	return res, nil
}
