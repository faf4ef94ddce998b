package render

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/plotspec"
	"github.com/uyouii/welllog/utils"
)

// scale maps data values of one axis onto chart coordinates. Log axes are drawn as
// log10 of the value with labelled decades.
type scale struct {
	axis plotspec.Axis
}

func (s scale) value(v float64) float64 {
	v = math.Max(s.axis.Range.Lower, math.Min(s.axis.Range.Upper, v))
	if s.axis.Log {
		return math.Log10(v)
	}
	return v
}

func (s scale) chartRange() *chart.ContinuousRange {
	lower, upper := s.value(s.axis.Range.Lower), s.value(s.axis.Range.Upper)
	if !(lower < upper) {
		lower, upper = lower-0.5, upper+0.5
	}
	return &chart.ContinuousRange{Min: lower, Max: upper, Descending: s.axis.Inverted}
}

func (s scale) ticks() []chart.Tick {
	if !s.axis.Log {
		return nil
	}
	lower, upper := s.value(s.axis.Range.Lower), s.value(s.axis.Range.Upper)
	res := []chart.Tick{{Value: lower, Label: utils.FloatString(s.axis.Range.Lower, 3)}}
	for k := math.Ceil(lower); k < upper; k++ {
		if k > lower {
			res = append(res, chart.Tick{Value: k, Label: utils.FloatString(math.Pow(10, k), 3)})
		}
	}
	return append(res, chart.Tick{Value: upper, Label: utils.FloatString(s.axis.Range.Upper, 3)})
}

// secondary maps a twin axis onto the primary x coordinates.
type secondary struct {
	primary scale
	axis    plotspec.Axis
}

func (s secondary) value(v float64) float64 {
	own := scale{axis: s.axis}
	lower, upper := own.value(s.axis.Range.Lower), own.value(s.axis.Range.Upper)
	t := 0.5
	if upper > lower {
		t = (own.value(v) - lower) / (upper - lower)
	}
	if s.axis.Inverted != s.primary.axis.Inverted {
		t = 1 - t
	}
	pr := s.primary.chartRange()
	return pr.Min + t*(pr.Max-pr.Min)
}

func axisName(axis plotspec.Axis) string {
	name := axis.Label
	if axis.Inverted {
		name = fmt.Sprintf("%s %s-%s", name, utils.FloatString(axis.Range.Upper, 3), utils.FloatString(axis.Range.Lower, 3))
	}
	return name
}

// panelChart translates one panel into a go-chart chart.
func panelChart(panel plotspec.Panel, width, height int) chart.Chart {
	xs, ys := scale{axis: panel.X}, scale{axis: panel.Y}
	xOf := xs.value
	var secondaryOf func(float64) float64
	xName := axisName(panel.X)
	if panel.SecondaryX != nil {
		secondaryOf = secondary{primary: xs, axis: *panel.SecondaryX}.value
		xName = fmt.Sprintf("%s | %s", xName, axisName(*panel.SecondaryX))
	}
	if panel.ColorMap != nil {
		xName = fmt.Sprintf("%s, color %s %s..%s", xName, panel.ColorMap.Label,
			utils.FloatString(panel.ColorMap.Min, 3), utils.FloatString(panel.ColorMap.Max, 3))
	}

	series := []chart.Series{}
	series = append(series, binSeries(panel.Bins, xOf, ys.value)...)
	series = append(series, boxSeries(panel.Box, ys.value)...)
	series = append(series, fillSeries(panel.Fills, xOf, ys.value, height)...)
	for _, s := range panel.Series {
		of := xOf
		if s.Secondary && secondaryOf != nil {
			of = secondaryOf
		}
		series = append(series, dataSeries(s, panel.ColorMap, of, ys.value)...)
	}
	series = append(series, referenceSeries(panel.References, xs, ys)...)

	ch := chart.Chart{
		Title:      panel.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  xName,
			Range: xs.chartRange(),
			Ticks: xs.ticks(),
		},
		YAxis: chart.YAxis{
			Name:  axisName(panel.Y),
			Range: ys.chartRange(),
			Ticks: ys.ticks(),
		},
		Series: series,
	}
	if panel.Box != nil {
		ch.XAxis.Ticks = []chart.Tick{{Value: 0, Label: ""}, {Value: 1, Label: panel.X.Label}, {Value: 2, Label: ""}}
		ch.XAxis.Name = ""
	}
	if len(panel.Legend) > 0 {
		ch.Elements = []chart.Renderable{legend(panel.Legend)}
	}
	return ch
}

func dataSeries(s plotspec.Series, cm *plotspec.ColorMap, xOf, yOf func(float64) float64) []chart.Series {
	color := parseColor(s.Color)
	style := chart.Style{StrokeColor: color, StrokeWidth: s.Width}
	if s.Marker == plotspec.MarkerPoints {
		style = chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 0, DotColor: color, DotWidth: s.Width}
	}
	if s.ColorValues != nil {
		style.DotWidth = math.Max(style.DotWidth, 2)
	}
	colorOf := colorMapper(cm, color)

	res := []chart.Series{}
	offset := 0
	for i, segment := range s.Segments() {
		cs := chart.ContinuousSeries{Style: style}
		if i == 0 {
			cs.Name = s.Name
		}
		if s.ColorValues != nil {
			// the provider indexes into this segment only
			values := s.ColorValues[offset : offset+len(segment[0])]
			cs.Style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
				return colorOf(values[index])
			}
		}
		for j := range segment[0] {
			cs.XValues = append(cs.XValues, xOf(segment[0][j]))
			cs.YValues = append(cs.YValues, yOf(segment[1][j]))
		}
		offset += len(segment[0])
		res = append(res, cs)
	}
	return res
}

func binSeries(bins []model.Bin, xOf, yOf func(float64) float64) []chart.Series {
	res := make([]chart.Series, 0, len(bins))
	for _, bin := range bins {
		res = append(res, chart.ContinuousSeries{
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 1,
				FillColor:   parseColor("#ff0000").WithAlpha(128),
			},
			XValues: []float64{xOf(bin.Lower), xOf(bin.Lower), xOf(bin.Upper), xOf(bin.Upper)},
			YValues: []float64{yOf(0), yOf(bin.Count), yOf(bin.Count), yOf(0)},
		})
	}
	return res
}

// boxSeries outlines a notched box at x = 1 with whiskers and the median.
func boxSeries(box *model.BoxStats, yOf func(float64) float64) []chart.Series {
	if box == nil {
		return nil
	}
	line := func(xs, ys []float64, width float64) chart.Series {
		mapped := make([]float64, len(ys))
		for i, y := range ys {
			mapped[i] = yOf(y)
		}
		return chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: width},
			XValues: xs,
			YValues: mapped,
		}
	}
	notchLow := math.Max(box.Notch.Lower, box.Q1)
	notchHigh := math.Min(box.Notch.Upper, box.Q3)
	return []chart.Series{
		line([]float64{0.7, 1.3, 1.3, 1.15, 1.3, 1.3, 0.7, 0.7, 0.85, 0.7, 0.7},
			[]float64{box.Q1, box.Q1, notchLow, box.Median, notchHigh, box.Q3, box.Q3, notchHigh, box.Median, notchLow, box.Q1}, 1),
		line([]float64{0.85, 1.15}, []float64{box.Median, box.Median}, 2),
		line([]float64{1, 1}, []float64{box.Q1, box.LowerWhisker}, 1),
		line([]float64{1, 1}, []float64{box.Q3, box.UpperWhisker}, 1),
		line([]float64{0.9, 1.1}, []float64{box.LowerWhisker, box.LowerWhisker}, 1),
		line([]float64{0.9, 1.1}, []float64{box.UpperWhisker, box.UpperWhisker}, 1),
	}
}

// fillSeries draws every filled sample as a thick horizontal stroke from the baseline.
func fillSeries(fills []plotspec.Fill, xOf, yOf func(float64) float64, height int) []chart.Series {
	total := 0
	for _, fill := range fills {
		total += len(fill.Depths)
	}
	if total == 0 {
		return nil
	}
	width := math.Max(1, float64(height)/float64(total))
	res := make([]chart.Series, 0, total)
	for _, fill := range fills {
		color := parseColor(fill.Color)
		for i, depth := range fill.Depths {
			res = append(res, chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: color, StrokeWidth: width},
				XValues: []float64{xOf(fill.Baseline), xOf(fill.Values[i])},
				YValues: []float64{yOf(depth), yOf(depth)},
			})
		}
	}
	return res
}

func referenceSeries(lines []plotspec.ReferenceLine, xs, ys scale) []chart.Series {
	res := make([]chart.Series, 0, len(lines))
	xr, yr := xs.chartRange(), ys.chartRange()
	for _, line := range lines {
		cs := chart.ContinuousSeries{
			Name: line.Name,
			Style: chart.Style{
				StrokeColor:     parseColor(line.Color),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5, 3},
			},
		}
		if line.Orientation == plotspec.Horizontal {
			y := ys.value(line.Value)
			cs.XValues, cs.YValues = []float64{xr.Min, xr.Max}, []float64{y, y}
		} else {
			x := xs.value(line.Value)
			cs.XValues, cs.YValues = []float64{x, x}, []float64{yr.Min, yr.Max}
		}
		res = append(res, cs)
	}
	return res
}

// legend draws a swatch and a label per entry in the top left corner of the canvas.
func legend(entries []plotspec.LegendEntry) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		r.SetFont(defaults.Font)
		r.SetFontSize(9)
		r.SetFontColor(drawing.ColorBlack)
		x, y := box.Left+8, box.Top+14
		for _, entry := range entries {
			color := parseColor(entry.Color)
			r.SetFillColor(color)
			r.SetStrokeColor(drawing.ColorBlack)
			r.SetStrokeWidth(1)
			r.MoveTo(x, y-9)
			r.LineTo(x+10, y-9)
			r.LineTo(x+10, y)
			r.LineTo(x, y)
			r.Close()
			r.FillStroke()
			r.Text(entry.Label, x+14, y)
			y += 14
		}
	}
}
