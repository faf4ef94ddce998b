package plotspec

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

func sample(v float64) model.Sample {
	if math.IsNaN(v) {
		return model.Missing()
	}
	return model.Present(v)
}

func column(mnemonic, unit string, values ...float64) model.Column {
	samples := make([]model.Sample, len(values))
	for i, v := range values {
		samples[i] = sample(v)
	}
	return model.Column{CurveInfo: model.CurveInfo{Mnemonic: mnemonic, Unit: unit}, Samples: samples}
}

var nan = math.NaN()

func logTable(t *testing.T) *model.DerivedTable {
	t.Helper()
	table, err := model.NewDerivedTable(
		[]float64{100, 100.5, 101, 101.5, 102, 102.5},
		[]model.Column{
			column("GR", "GAPI", 40, 60, nan, 55, 30, 120),
			column("ILD", "OHMM", 2, 20, 200, 15, 8, 1),
			column("RHOB", "G/C3", 2.3, 2.4, 2.45, nan, 2.6, 2.2),
			column("NPLS", "%", 24, 22, 20, 18, nan, 30),
			column("EMPTY", "", nan, nan, nan, nan, nan, nan),
		})
	require.NoError(t, err)
	return table
}

func TestBuildLinePlot(t *testing.T) {
	table := logTable(t)
	opts := DefaultOptions()
	opts.Curves = map[string]CurveStyle{
		"GR":   {Color: "#000000", Bounds: Bounds{Mode: BoundsFixed, Min: 0, Max: 150}},
		"ILD":  {Log: true},
		"NPLS": {Bounds: Bounds{Mode: BoundsFixed, Min: 0, Max: 40}, Inverted: true},
	}
	opts.Boundaries = []model.Boundary{{BoundaryType: model.IncreaseBoundary, DepthValue: model.DepthValue{Depth: 101.5, Value: 55}}}

	spec, err := BuildLinePlot(table, [][]string{{"GR"}, {"ILD"}, {"RHOB", "NPLS"}}, opts)
	require.NoError(t, err)
	assert.Equal(t, KindLine, spec.Kind)
	require.Len(t, spec.Panels, 3)

	gr := spec.Panels[0]
	assert.Equal(t, Axis{Label: "Depth", Range: model.Clip{Lower: 100, Upper: 102.5}, Inverted: true}, gr.Y)
	assert.Equal(t, Axis{Label: "GR [GAPI]", Range: model.Clip{Lower: 0, Upper: 150}, Top: true}, gr.X)
	require.Len(t, gr.Series, 1)
	assert.Equal(t, []float64{40, 60, 55, 30, 120}, gr.Series[0].X)
	assert.Equal(t, []float64{100, 100.5, 101.5, 102, 102.5}, gr.Series[0].Y)
	assert.Equal(t, []int{2}, gr.Series[0].Gaps)
	assert.Equal(t, "#000000", gr.Series[0].Color)
	require.Len(t, gr.References, 1)
	assert.Equal(t, ReferenceLine{Name: "increase @ 101.5", Value: 101.5, Orientation: Horizontal, Color: "#2ca02c"}, gr.References[0])

	ild := spec.Panels[1]
	assert.True(t, ild.X.Log)
	assert.Equal(t, model.Clip{Lower: 1, Upper: 200}, ild.X.Range)

	twin := spec.Panels[2]
	require.NotNil(t, twin.SecondaryX)
	assert.Equal(t, model.Clip{Lower: 0, Upper: 40}, twin.SecondaryX.Range)
	assert.True(t, twin.SecondaryX.Inverted)
	assert.False(t, twin.X.Inverted)
	require.Len(t, twin.Series, 2)
	assert.False(t, twin.Series[0].Secondary)
	assert.True(t, twin.Series[1].Secondary)
	assert.Len(t, twin.Legend, 2)
}

func TestBuildLinePlot_NoMissingInSeries(t *testing.T) {
	table := logTable(t)
	spec, err := BuildLinePlot(table, [][]string{{"GR"}, {"RHOB"}, {"NPLS"}}, DefaultOptions())
	require.NoError(t, err)
	for _, panel := range spec.Panels {
		for _, series := range panel.Series {
			values, err := table.Values(series.Curve)
			require.NoError(t, err)
			assert.Equal(t, values, series.X)
			for _, v := range series.X {
				assert.False(t, math.IsNaN(v))
			}
		}
	}
}

func TestBuildLinePlot_Errors(t *testing.T) {
	table := logTable(t)

	_, err := BuildLinePlot(table, nil, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorConfig)
	_, err = BuildLinePlot(table, [][]string{{"GR", "ILD", "RHOB"}}, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorConfig)
	_, err = BuildLinePlot(table, [][]string{{"SP"}}, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = BuildLinePlot(table, [][]string{{"EMPTY"}}, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorEmptyInput)

	opts := DefaultOptions()
	opts.LogScaleX = true
	opts.Curves = map[string]CurveStyle{"GR": {Bounds: Bounds{Mode: BoundsFixed, Min: 0, Max: 150}}}
	_, err = BuildLinePlot(table, [][]string{{"GR"}}, opts)
	assert.ErrorIs(t, err, common.ErrorConfig)

	opts = DefaultOptions()
	opts.Curves = map[string]CurveStyle{"GR": {Bounds: Bounds{Mode: "clamp"}}}
	_, err = BuildLinePlot(table, [][]string{{"GR"}}, opts)
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestBuildLinePlot_PercentileBounds(t *testing.T) {
	table := logTable(t)
	opts := DefaultOptions()
	opts.Curves = map[string]CurveStyle{"GR": {Bounds: Bounds{Mode: BoundsPercentile, Lower: 0, Upper: 1}}}

	spec, err := BuildLinePlot(table, [][]string{{"GR"}}, opts)
	require.NoError(t, err)
	assert.Equal(t, model.Clip{Lower: 30, Upper: 120}, spec.Panels[0].X.Range)
}

func TestBuildHistogram(t *testing.T) {
	table := logTable(t)
	opts := DefaultOptions()
	opts.Bins = 3
	opts.Density = true
	opts.KDE = true
	opts.MarkStatistics = []string{"mean", "p5", "p95"}
	opts.ReferenceLines = []ReferenceLine{{Name: "cutoff", Value: 75}}
	opts.Curves = map[string]CurveStyle{"GR": {Bounds: Bounds{Mode: BoundsFixed, Min: 0, Max: 175}}}

	spec, err := BuildHistogram(table, "GR", opts)
	require.NoError(t, err)
	require.Len(t, spec.Panels, 1)
	panel := spec.Panels[0]

	assert.Equal(t, model.Clip{Lower: 0, Upper: 175}, panel.X.Range)
	assert.Equal(t, "Density", panel.Y.Label)
	require.Len(t, panel.Bins, 3)
	assert.Equal(t, 30.0, panel.Bins[0].Lower)
	assert.Equal(t, 120.0, panel.Bins[2].Upper)

	require.Len(t, panel.Series, 1)
	assert.Equal(t, "KDE", panel.Series[0].Name)

	require.Len(t, panel.References, 4)
	assert.Equal(t, "mean", panel.References[0].Name)
	assert.InDelta(t, 61, panel.References[0].Value, 1e-9)
	assert.Equal(t, "5th percentile", panel.References[1].Name)
	assert.InDelta(t, 32, panel.References[1].Value, 1e-9)
	assert.Equal(t, "95th percentile", panel.References[2].Name)
	assert.InDelta(t, 108, panel.References[2].Value, 1e-9)
	assert.Equal(t, Vertical, panel.References[2].Orientation)
	assert.Equal(t, "cutoff", panel.References[3].Name)
	assert.GreaterOrEqual(t, panel.Y.Range.Upper, panel.Bins[0].Count)
}

func TestBuildHistogram_Errors(t *testing.T) {
	table := logTable(t)

	opts := DefaultOptions()
	opts.MarkStatistics = []string{"mode"}
	_, err := BuildHistogram(table, "GR", opts)
	assert.ErrorIs(t, err, common.ErrorConfig)

	opts = DefaultOptions()
	opts.ColorBy = "GR"
	_, err = BuildHistogram(table, "RHOB", opts)
	assert.ErrorIs(t, err, common.ErrorConfig)

	opts = DefaultOptions()
	opts.Bins = -1
	_, err = BuildHistogram(table, "GR", opts)
	assert.ErrorIs(t, err, common.ErrorConfig)

	_, err = BuildHistogram(table, "EMPTY", DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorEmptyInput)
}

func TestBuildBoxplot(t *testing.T) {
	table := logTable(t)
	spec, err := BuildBoxplot(table, []string{"GR", "ILD"}, Options{})
	require.NoError(t, err)
	require.Len(t, spec.Panels, 2)

	gr := spec.Panels[0]
	assert.Equal(t, "Boxplot of GR [GAPI]", gr.Title)
	require.NotNil(t, gr.Box)
	assert.Equal(t, 5, gr.Box.Count)
	assert.Equal(t, 55.0, gr.Box.Median)
	require.Len(t, gr.Series, 2)
	assert.Equal(t, "mean", gr.Series[0].Name)
	assert.Equal(t, []float64{61}, gr.Series[0].Y)
	assert.Equal(t, []float64{120}, gr.Series[1].Y)
	assert.Equal(t, model.Clip{Lower: 30, Upper: 120}, gr.Y.Range)

	spec, err = BuildBoxplot(table, []string{"GR"}, Options{LogScaleX: true})
	require.NoError(t, err)
	assert.True(t, spec.Panels[0].Y.Log, "box values run along the vertical axis")
	assert.False(t, spec.Panels[0].X.Log)

	_, err = BuildBoxplot(table, nil, Options{})
	assert.ErrorIs(t, err, common.ErrorConfig)
	_, err = BuildBoxplot(table, []string{"EMPTY"}, Options{})
	assert.ErrorIs(t, err, common.ErrorEmptyInput)
}

func TestBuildCrossplot(t *testing.T) {
	table := logTable(t)
	opts := DefaultOptions()
	opts.ColorBy = "GR"
	opts.ColorRange = &model.Clip{Lower: 0, Upper: 100}
	opts.Curves = map[string]CurveStyle{
		"NPLS": {Bounds: Bounds{Mode: BoundsFixed, Min: -5, Max: 60}},
		"RHOB": {Bounds: Bounds{Mode: BoundsFixed, Min: 1.5, Max: 3.0}},
	}

	spec, err := BuildCrossplot(table, "NPLS", "RHOB", opts)
	require.NoError(t, err)
	panel := spec.Panels[0]

	// depth 101 lacks GR, 101.5 lacks RHOB, 102 lacks NPLS
	series := panel.Series[0]
	if diff := cmp.Diff([]float64{24, 22, 30}, series.X); diff != "" {
		t.Errorf("x mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float64{2.3, 2.4, 2.2}, series.Y)
	assert.Equal(t, []float64{40, 60, 120}, series.ColorValues)
	assert.Equal(t, MarkerPoints, series.Marker)

	assert.True(t, panel.Y.Inverted)
	assert.Equal(t, model.Clip{Lower: 1.5, Upper: 3.0}, panel.Y.Range)
	assert.Equal(t, &ColorMap{Curve: "GR", Label: "GR [GAPI]", Name: "rainbow", Min: 0, Max: 100}, panel.ColorMap)
}

func TestBuildCrossplot_Errors(t *testing.T) {
	table := logTable(t)

	_, err := BuildCrossplot(table, "NPLS", "EMPTY", DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorEmptyInput)

	opts := DefaultOptions()
	opts.ColorBy = "SP"
	_, err = BuildCrossplot(table, "NPLS", "RHOB", opts)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	opts = DefaultOptions()
	opts.ColorBy = "GR"
	opts.ColorMap = "jet"
	_, err = BuildCrossplot(table, "NPLS", "RHOB", opts)
	assert.ErrorIs(t, err, common.ErrorConfig)

	opts = DefaultOptions()
	opts.ColorBy = "GR"
	opts.ColorRange = &model.Clip{Lower: 100, Upper: 0}
	_, err = BuildCrossplot(table, "NPLS", "RHOB", opts)
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestBuildShadedPlot(t *testing.T) {
	table := logTable(t)
	opts := DefaultOptions()
	opts.Curves = map[string]CurveStyle{"GR": {Bounds: Bounds{Mode: BoundsFixed, Min: 0, Max: 150}}}

	spec, err := BuildShadedPlot(table, "GR", 50, opts)
	require.NoError(t, err)
	panel := spec.Panels[0]

	want := []Fill{
		{Label: "Sand", Color: "#ffff00", Baseline: 50, Depths: []float64{100}, Values: []float64{40}},
		{Label: "Shale", Color: "#808080", Baseline: 50, Depths: []float64{100.5}, Values: []float64{60}},
		{Label: "Shale", Color: "#808080", Baseline: 50, Depths: []float64{101.5}, Values: []float64{55}},
		{Label: "Sand", Color: "#ffff00", Baseline: 50, Depths: []float64{102}, Values: []float64{30}},
		{Label: "Shale", Color: "#808080", Baseline: 50, Depths: []float64{102.5}, Values: []float64{120}},
	}
	if diff := cmp.Diff(want, panel.Fills); diff != "" {
		t.Errorf("fills mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []LegendEntry{{Label: "Sand", Color: "#ffff00"}, {Label: "Shale", Color: "#808080"}}, panel.Legend)
	assert.True(t, panel.Y.Inverted)
	assert.Equal(t, 50.0, panel.References[0].Value)

	_, err = BuildShadedPlot(table, "GR", 50, Options{Labels: model.CategoryLabels{Below: "x", Above: "x"}})
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestSeriesSegments(t *testing.T) {
	s := Series{X: []float64{1, 2, 3, 4}, Y: []float64{10, 20, 30, 40}, Gaps: []int{1, 3}}
	segments := s.Segments()
	require.Len(t, segments, 3)
	assert.Equal(t, []float64{1}, segments[0][0])
	assert.Equal(t, []float64{2, 3}, segments[1][0])
	assert.Equal(t, []float64{40}, segments[2][1])
}
