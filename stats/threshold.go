package stats

import (
	"fmt"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

// ComputeThreshold returns the lower and upper percentiles of a curve, used as axis
// bounds or interpretation cutoffs (e.g. P5/P95 clean and shale gamma ray).
func ComputeThreshold(table *model.DerivedTable, curve string, lowerPercentile, upperPercentile float64) (model.Clip, error) {
	if err := checkQuantile(lowerPercentile); err != nil {
		return model.Clip{}, err
	}
	if err := checkQuantile(upperPercentile); err != nil {
		return model.Clip{}, err
	}
	if lowerPercentile >= upperPercentile {
		return model.Clip{}, fmt.Errorf("lower percentile %v must be below upper percentile %v: %w",
			lowerPercentile, upperPercentile, common.ErrorConfig)
	}

	values, err := sortedValues(table, curve)
	if err != nil {
		return model.Clip{}, err
	}
	return model.Clip{
		Lower: Percentile(values, lowerPercentile),
		Upper: Percentile(values, upperPercentile),
	}, nil
}
