package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

var DefaultPercentiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// Describe summarizes the non-missing samples of one curve. A nil percentile set
// means DefaultPercentiles.
func Describe(table *model.DerivedTable, curve string, percentiles []float64) (*model.SummaryStatistics, error) {
	if percentiles == nil {
		percentiles = DefaultPercentiles
	}
	for _, p := range percentiles {
		if err := checkQuantile(p); err != nil {
			return nil, err
		}
	}

	column, err := table.Column(curve)
	if err != nil {
		return nil, err
	}
	values, err := sortedValues(table, curve)
	if err != nil {
		return nil, err
	}

	mean, stddev := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		stddev = math.NaN()
	}
	res := &model.SummaryStatistics{
		Curve:       curve,
		Unit:        column.Unit,
		Count:       len(values),
		Mean:        mean,
		StdDev:      stddev,
		Min:         floats.Min(values),
		Max:         floats.Max(values),
		Percentiles: make([]model.QuantileValue, 0, len(percentiles)),
	}
	for _, p := range percentiles {
		res.Percentiles = append(res.Percentiles, model.QuantileValue{
			Quantile: p,
			Value:    Percentile(values, p),
		})
	}
	return res, nil
}

type Summary struct {
	Statistics []*model.SummaryStatistics
	// curves without a single non-missing sample
	Skipped []string
}

// DescribeAll runs Describe over every curve of the table in column order.
func DescribeAll(table *model.DerivedTable, percentiles []float64) (*Summary, error) {
	res := &Summary{}
	for _, curve := range table.Curves() {
		s, err := Describe(table, curve, percentiles)
		if errors.Is(err, common.ErrorEmptyInput) {
			res.Skipped = append(res.Skipped, curve)
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Statistics = append(res.Statistics, s)
	}
	return res, nil
}

// Percentile interpolates linearly between the order statistics of sorted,
// at rank (n-1)*p. sorted must be ascending and non-empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lower := math.Floor(h)
	i := int(lower)
	if i >= n-1 {
		return sorted[n-1]
	}
	if i < 0 {
		return sorted[0]
	}
	return sorted[i] + (h-lower)*(sorted[i+1]-sorted[i])
}

func checkQuantile(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("percentile %v outside [0, 1]: %w", p, common.ErrorConfig)
	}
	return nil
}

func sortedValues(table *model.DerivedTable, curve string) ([]float64, error) {
	values, err := table.Values(curve)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}
	sort.Float64s(values)
	return values, nil
}
