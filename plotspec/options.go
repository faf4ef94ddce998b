package plotspec

import (
	"fmt"
	"math"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/kde"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/stats"
)

const (
	DefaultBins     = 30
	DefaultColorMap = "rainbow"
)

type BoundsMode string

const (
	BoundsAuto       BoundsMode = "auto"
	BoundsFixed      BoundsMode = "fixed"
	BoundsPercentile BoundsMode = "percentile"
)

// Bounds decides the axis range of a curve. Fixed uses Min and Max, percentile
// computes the Lower and Upper quantiles of the data, auto spans the data.
type Bounds struct {
	Mode  BoundsMode `yaml:"mode"`
	Min   float64    `yaml:"min,omitempty"`
	Max   float64    `yaml:"max,omitempty"`
	Lower float64    `yaml:"lower,omitempty"`
	Upper float64    `yaml:"upper,omitempty"`
}

func (b Bounds) Validate() error {
	switch b.Mode {
	case "", BoundsAuto:
	case BoundsFixed:
		if !(b.Min < b.Max) {
			return fmt.Errorf("fixed bounds %v..%v are empty: %w", b.Min, b.Max, common.ErrorConfig)
		}
	case BoundsPercentile:
		if !(b.Lower >= 0 && b.Lower < b.Upper && b.Upper <= 1) {
			return fmt.Errorf("percentile bounds %v, %v must satisfy 0 <= lower < upper <= 1: %w",
				b.Lower, b.Upper, common.ErrorConfig)
		}
	default:
		return fmt.Errorf("unknown bounds mode %q: %w", b.Mode, common.ErrorConfig)
	}
	return nil
}

// Resolve computes the range for curve in table.
func (b Bounds) Resolve(table *model.DerivedTable, curve string) (model.Clip, error) {
	if err := b.Validate(); err != nil {
		return model.Clip{}, err
	}
	switch b.Mode {
	case BoundsFixed:
		return model.Clip{Lower: b.Min, Upper: b.Max}, nil
	case BoundsPercentile:
		return stats.ComputeThreshold(table, curve, b.Lower, b.Upper)
	}

	values, err := table.Values(curve)
	if err != nil {
		return model.Clip{}, err
	}
	if len(values) == 0 {
		return model.Clip{}, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}
	return dataRange(values), nil
}

type CurveStyle struct {
	Color    string `yaml:"color,omitempty"`
	Bounds   Bounds `yaml:"bounds"`
	Log      bool   `yaml:"log,omitempty"`
	Inverted bool   `yaml:"inverted,omitempty"`
}

// Options are read by every builder; a builder rejects the ones it cannot honor.
type Options struct {
	Title string
	// reverse the vertical axis, depth grows downwards on log tracks
	InvertY bool
	InvertX bool
	// logarithmic value axis: horizontal on log tracks, histograms and
	// crossplots, vertical on box plots where the curve values run up the page
	LogScaleX bool

	ColorBy    string
	ColorRange *model.Clip
	ColorMap   string

	Bins    int
	Density bool
	KDE     bool
	// estimator settings of the KDE overlay, defaults when nil
	Smoothing *kde.Options
	// "mean", "median" or a percentile such as "p5"
	MarkStatistics []string

	ReferenceLines []ReferenceLine
	Boundaries     []model.Boundary

	Curves map[string]CurveStyle

	Labels     model.CategoryLabels
	BelowColor string
	AboveColor string
}

func DefaultOptions() Options {
	return Options{
		InvertY:    true,
		ColorMap:   DefaultColorMap,
		Bins:       DefaultBins,
		Labels:     model.LithologyLabels,
		BelowColor: "#ffff00",
		AboveColor: "#808080",
	}
}

// Validate checks the options that do not depend on a dataset.
func (o Options) Validate() error {
	if o.Bins < 0 {
		return fmt.Errorf("bins must not be negative, got %d: %w", o.Bins, common.ErrorConfig)
	}
	if o.ColorMap != "" && !knownColorMaps[o.ColorMap] {
		return fmt.Errorf("unknown color map %q: %w", o.ColorMap, common.ErrorConfig)
	}
	if o.Smoothing != nil {
		if err := o.Smoothing.Validate(); err != nil {
			return err
		}
	}
	if o.ColorRange != nil && !(o.ColorRange.Lower < o.ColorRange.Upper) {
		return fmt.Errorf("color range %v..%v is empty: %w", o.ColorRange.Lower, o.ColorRange.Upper, common.ErrorConfig)
	}
	for curve, style := range o.Curves {
		if err := style.Bounds.Validate(); err != nil {
			return fmt.Errorf("curve %q: %w", curve, err)
		}
		if style.Log && style.Bounds.Mode == BoundsFixed && !(style.Bounds.Min > 0) {
			return fmt.Errorf("curve %q: log axis needs a positive minimum: %w", curve, common.ErrorConfig)
		}
	}
	if _, err := statisticLines([]float64{0}, o.MarkStatistics); err != nil {
		return err
	}
	if o.Labels != (model.CategoryLabels{}) {
		return o.Labels.Validate()
	}
	return nil
}

func (o Options) style(curve string) CurveStyle {
	return o.Curves[curve]
}

func (o Options) colorOf(curve string, i int) string {
	if c := o.style(curve).Color; c != "" {
		return c
	}
	return palette[i%len(palette)]
}

var palette = []string{"#000000", "#d62728", "#1f77b4", "#2ca02c", "#9467bd", "#8c564b", "#ff7f0e"}

// valueAxis builds the axis of a curve from its style and the global flags.
func (o Options) valueAxis(table *model.DerivedTable, column model.Column) (Axis, error) {
	style := o.style(column.Mnemonic)
	span, err := style.Bounds.Resolve(table, column.Mnemonic)
	if err != nil {
		return Axis{}, err
	}
	axis := Axis{
		Label:    column.Label(),
		Range:    span,
		Inverted: style.Inverted || o.InvertX,
		Log:      style.Log || o.LogScaleX,
	}
	if err := axis.checkLog(column.Mnemonic); err != nil {
		return Axis{}, err
	}
	return axis, nil
}

// rangeOf resolves non-automatic bounds, automatic ones span the given values.
func rangeOf(table *model.DerivedTable, curve string, bounds Bounds, values []float64) (model.Clip, error) {
	if bounds.Mode != "" && bounds.Mode != BoundsAuto {
		return bounds.Resolve(table, curve)
	}
	return dataRange(values), nil
}

func (a Axis) checkLog(curve string) error {
	if a.Log && !(a.Range.Lower > 0) {
		return fmt.Errorf("log axis for %q needs a positive range, got %v..%v: %w",
			curve, a.Range.Lower, a.Range.Upper, common.ErrorConfig)
	}
	return nil
}

func (o Options) rejectColorBy(kind Kind) error {
	if o.ColorBy != "" {
		return fmt.Errorf("color-by is not available for %s plots: %w", kind, common.ErrorConfig)
	}
	return nil
}

// colorValues returns the samples of the color-by curve, NaN where missing.
func (o Options) colorValues(table *model.DerivedTable) ([]float64, *ColorMap, error) {
	if o.ColorBy == "" {
		return nil, nil, nil
	}
	column, err := table.Column(o.ColorBy)
	if err != nil {
		return nil, nil, err
	}
	res := make([]float64, len(column.Samples))
	present := []float64{}
	for i, s := range column.Samples {
		res[i] = math.NaN()
		if s.Valid {
			res[i] = s.Value
			present = append(present, s.Value)
		}
	}

	name := o.ColorMap
	if name == "" {
		name = DefaultColorMap
	}
	if !knownColorMaps[name] {
		return nil, nil, fmt.Errorf("unknown color map %q: %w", name, common.ErrorConfig)
	}

	var span model.Clip
	switch {
	case o.ColorRange != nil:
		if !(o.ColorRange.Lower < o.ColorRange.Upper) {
			return nil, nil, fmt.Errorf("color range %v..%v is empty: %w",
				o.ColorRange.Lower, o.ColorRange.Upper, common.ErrorConfig)
		}
		span = *o.ColorRange
	case len(present) > 0:
		span = dataRange(present)
	default:
		return nil, nil, fmt.Errorf("color-by curve %q has no non-missing samples: %w", o.ColorBy, common.ErrorEmptyInput)
	}

	return res, &ColorMap{
		Curve: o.ColorBy,
		Label: column.Label(),
		Name:  name,
		Min:   span.Lower,
		Max:   span.Upper,
	}, nil
}

var knownColorMaps = map[string]bool{"rainbow": true, "viridis": true}

func dataRange(values []float64) model.Clip {
	lower, upper := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lower = math.Min(lower, v)
		upper = math.Max(upper, v)
	}
	if lower == upper {
		lower, upper = lower-0.5, upper+0.5
	}
	return model.Clip{Lower: lower, Upper: upper}
}

func depthAxis(table *model.DerivedTable, inverted bool) Axis {
	label := "Depth"
	if table.Index.Unit != "" {
		label = fmt.Sprintf("Depth (%s)", table.Index.Unit)
	}
	axis := Axis{Label: label, Inverted: inverted}
	if n := table.Len(); n > 0 {
		axis.Range = model.Clip{Lower: table.Depths[0], Upper: table.Depths[n-1]}
	}
	return axis
}
