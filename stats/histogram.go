package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

// Histogram bins values into equal-width bins over span, or over the data range when
// span is nil. Values outside span are not counted. With density set the counts are
// scaled so that the bars integrate to one.
func Histogram(values []float64, bins int, span *model.Clip, density bool) ([]model.Bin, error) {
	if bins < 1 {
		return nil, fmt.Errorf("bin count %d must be positive: %w", bins, common.ErrorConfig)
	}

	x := make([]float64, 0, len(values))
	for _, v := range values {
		if span == nil || span.Contains(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("no values to bin: %w", common.ErrorEmptyInput)
	}
	sort.Float64s(x)

	var lower, upper float64
	if span != nil {
		if !(span.Lower < span.Upper) {
			return nil, fmt.Errorf("histogram range %v..%v is empty: %w", span.Lower, span.Upper, common.ErrorConfig)
		}
		lower, upper = span.Lower, span.Upper
	} else {
		lower, upper = x[0], x[len(x)-1]
		if lower == upper {
			lower, upper = lower-0.5, upper+0.5
		}
	}

	dividers := floats.Span(make([]float64, bins+1), lower, upper)
	// the last divider is exclusive, nudge it so the maximum lands in the last bin
	dividers[bins] = math.Nextafter(upper, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	res := make([]model.Bin, bins)
	for i := range res {
		res[i] = model.Bin{Lower: dividers[i], Upper: dividers[i+1], Count: counts[i]}
	}
	res[bins-1].Upper = upper

	if density {
		n := float64(len(x))
		for i := range res {
			width := res[i].Upper - res[i].Lower
			res[i].Count = res[i].Count / (n * width)
		}
	}
	return res, nil
}

// BoxStatistics computes the boxplot summary of a curve; outliers keep their depth.
func BoxStatistics(table *model.DerivedTable, curve string) (*model.BoxStats, error) {
	samples, err := table.DepthValues(curve)
	if err != nil {
		return nil, err
	}
	values, err := sortedValues(table, curve)
	if err != nil {
		return nil, err
	}

	res := &model.BoxStats{
		Curve:  curve,
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: Percentile(values, 0.5),
		Q1:     Percentile(values, 0.25),
		Q3:     Percentile(values, 0.75),
	}
	iqr := res.IQR()
	low, high := res.Q1-1.5*iqr, res.Q3+1.5*iqr

	res.LowerWhisker, res.UpperWhisker = res.Q1, res.Q3
	for _, v := range values {
		if v >= low {
			res.LowerWhisker = math.Min(v, res.Q1)
			break
		}
	}
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] <= high {
			res.UpperWhisker = math.Max(values[i], res.Q3)
			break
		}
	}

	halfNotch := 1.57 * iqr / math.Sqrt(float64(len(values)))
	res.Notch = model.Clip{Lower: res.Median - halfNotch, Upper: res.Median + halfNotch}

	for _, sample := range samples {
		if sample.Value < low || sample.Value > high {
			res.Outliers = append(res.Outliers, sample)
		}
	}
	return res, nil
}
