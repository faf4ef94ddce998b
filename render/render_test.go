package render

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/plotspec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func column(mnemonic, unit string, values ...float64) model.Column {
	samples := make([]model.Sample, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			samples[i] = model.Missing()
			continue
		}
		samples[i] = model.Present(v)
	}
	return model.Column{CurveInfo: model.CurveInfo{Mnemonic: mnemonic, Unit: unit}, Samples: samples}
}

func logTable(t *testing.T) *model.DerivedTable {
	t.Helper()
	nan := math.NaN()
	depths := make([]float64, 40)
	gr, ild, rhob, npls := make([]float64, 40), make([]float64, 40), make([]float64, 40), make([]float64, 40)
	for i := range depths {
		depths[i] = 1000 + float64(i)*0.5
		gr[i] = 40 + 30*math.Sin(float64(i)/4)
		ild[i] = math.Pow(10, float64(i%8)/4)
		rhob[i] = 2.2 + float64(i%5)*0.1
		npls[i] = 10 + float64(i%7)*3
	}
	gr[7], rhob[12] = nan, nan
	table, err := model.NewDerivedTable(depths, []model.Column{
		column("GR", "GAPI", gr...),
		column("ILD", "OHMM", ild...),
		column("RHOB", "G/C3", rhob...),
		column("NPLS", "%", npls...),
	})
	require.NoError(t, err)
	return table
}

func specs(t *testing.T) map[string]*plotspec.Spec {
	t.Helper()
	table := logTable(t)
	opts := plotspec.DefaultOptions()
	opts.Curves = map[string]plotspec.CurveStyle{
		"ILD":  {Log: true},
		"NPLS": {Bounds: plotspec.Bounds{Mode: plotspec.BoundsFixed, Min: 0, Max: 40}, Inverted: true},
	}
	opts.Boundaries = []model.Boundary{{BoundaryType: model.IncreaseBoundary, DepthValue: model.DepthValue{Depth: 1005, Value: 60}}}

	res := map[string]*plotspec.Spec{}
	var err error
	res["line"], err = plotspec.BuildLinePlot(table, [][]string{{"GR"}, {"ILD"}, {"RHOB", "NPLS"}}, opts)
	require.NoError(t, err)

	hist := opts
	hist.KDE = true
	hist.MarkStatistics = []string{"mean", "p5", "p95"}
	res["histogram"], err = plotspec.BuildHistogram(table, "GR", hist)
	require.NoError(t, err)

	res["box"], err = plotspec.BuildBoxplot(table, []string{"GR", "RHOB"}, opts)
	require.NoError(t, err)

	cross := opts
	cross.ColorBy = "GR"
	res["crossplot"], err = plotspec.BuildCrossplot(table, "NPLS", "RHOB", cross)
	require.NoError(t, err)

	res["shaded"], err = plotspec.BuildShadedPlot(table, "GR", 45, opts)
	require.NoError(t, err)
	return res
}

func TestChartSurface_PNG(t *testing.T) {
	surface := NewChartSurface()
	for name, spec := range specs(t) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, surface.Render(context.Background(), spec, FormatPNG, &buf))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			width, height := surface.panelSize(spec.Kind)
			assert.Equal(t, width*len(spec.Panels), img.Bounds().Dx())
			assert.GreaterOrEqual(t, img.Bounds().Dy(), height)
		})
	}
}

func TestChartSurface_Title(t *testing.T) {
	spec := specs(t)["shaded"]
	spec.Title = "Well A-1"
	surface := NewChartSurface()

	var buf bytes.Buffer
	require.NoError(t, surface.Render(context.Background(), spec, FormatPNG, &buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	_, height := surface.panelSize(spec.Kind)
	assert.Equal(t, height+titleHeight, img.Bounds().Dy())
}

func TestChartSurface_SVG(t *testing.T) {
	all := specs(t)
	surface := NewChartSurface()

	var buf bytes.Buffer
	require.NoError(t, surface.Render(context.Background(), all["crossplot"], FormatSVG, &buf))
	assert.True(t, strings.Contains(buf.String(), "<svg"))

	buf.Reset()
	err := surface.Render(context.Background(), all["line"], FormatSVG, &buf)
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestChartSurface_Errors(t *testing.T) {
	surface := NewChartSurface()
	var buf bytes.Buffer
	assert.ErrorIs(t, surface.Render(context.Background(), &plotspec.Spec{Kind: plotspec.KindLine}, FormatPNG, &buf),
		common.ErrorEmptyInput)
	assert.ErrorIs(t, surface.Render(context.Background(), specs(t)["box"], Format("gif"), &buf), common.ErrorConfig)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	spec := specs(t)["histogram"]

	path := filepath.Join(dir, "gr.png")
	require.NoError(t, RenderFile(context.Background(), NewChartSurface(), spec, path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	err = RenderFile(context.Background(), NewChartSurface(), spec, filepath.Join(dir, "missing", "gr.png"))
	assert.ErrorIs(t, err, common.ErrorIO)

	err = RenderFile(context.Background(), NewChartSurface(), spec, filepath.Join(dir, "gr.jpeg"))
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, uint8(0xd6), parseColor("#d62728").R)
	assert.Equal(t, uint8(0x28), parseColor("d62728").B)
	assert.Equal(t, parseColor("#000000"), parseColor("not a color"))
}

func TestColorMapper(t *testing.T) {
	cm := &plotspec.ColorMap{Name: "rainbow", Min: 0, Max: 100}
	fallback := parseColor("#123456")
	colorOf := colorMapper(cm, fallback)

	assert.Equal(t, fallback, colorOf(math.NaN()))
	low, high := colorOf(0), colorOf(100)
	assert.Equal(t, uint8(255), high.R)
	assert.Equal(t, uint8(0), high.B)
	assert.Greater(t, low.B, low.G)
	assert.Equal(t, colorOf(100), colorOf(250))
	assert.Equal(t, fallback, colorMapper(nil, fallback)(10))
}

func TestScale(t *testing.T) {
	log := scale{axis: plotspec.Axis{Range: model.Clip{Lower: 1, Upper: 1000}, Log: true}}
	assert.InDelta(t, 2, log.value(100), 1e-12)
	assert.InDelta(t, 3, log.value(5000), 1e-12)
	ticks := log.ticks()
	require.Len(t, ticks, 4)
	assert.Equal(t, "10", ticks[1].Label)

	primary := scale{axis: plotspec.Axis{Range: model.Clip{Lower: 1.95, Upper: 2.95}}}
	twin := secondary{primary: primary, axis: plotspec.Axis{Range: model.Clip{Lower: 0, Upper: 40}, Inverted: true}}
	assert.InDelta(t, 2.95, twin.value(0), 1e-12)
	assert.InDelta(t, 1.95, twin.value(40), 1e-12)
}
