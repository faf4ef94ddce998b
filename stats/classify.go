package stats

import (
	"fmt"
	"math"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

// Classify splits a curve into depth-contiguous runs on either side of threshold.
// A sample equal to threshold goes to labels.Below. Missing samples close the current
// run and belong to none.
func Classify(table *model.DerivedTable, curve string, threshold float64, labels model.CategoryLabels) ([]model.Run, error) {
	if err := labels.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(threshold) {
		return nil, fmt.Errorf("threshold is NaN: %w", common.ErrorConfig)
	}
	column, err := table.Column(curve)
	if err != nil {
		return nil, err
	}

	runs := []model.Run{}
	current := -1
	for i, sample := range column.Samples {
		if !sample.Valid {
			current = -1
			continue
		}
		category := labels.Above
		if sample.Value <= threshold {
			category = labels.Below
		}
		depth := table.Depths[i]
		if current >= 0 && runs[current].Category == category {
			runs[current].Base = depth
			runs[current].Count++
			continue
		}
		runs = append(runs, model.Run{Top: depth, Base: depth, Count: 1, Category: category})
		current = len(runs) - 1
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}
	return runs, nil
}
