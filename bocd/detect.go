package bocd

import (
	"context"
	"fmt"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

type Options struct {
	// prior probability that any sample starts a new regime
	Hazard float64 `yaml:"hazard"`
	// run length probability needed to report a boundary
	Threshold float64 `yaml:"threshold"`
	// how many samples after a boundary it may still be reported
	Window int `yaml:"window"`
	// observation variance as a fraction of the curve variance
	NoiseScale float64 `yaml:"noise_scale"`
}

func DefaultOptions() Options {
	return Options{
		Hazard:     1 / 250.0,
		Threshold:  0.75,
		Window:     5,
		NoiseScale: 0.05,
	}
}

func (o Options) Validate() error {
	if !(o.Hazard > 0 && o.Hazard < 1) {
		return fmt.Errorf("hazard %v outside (0, 1): %w", o.Hazard, common.ErrorConfig)
	}
	if !(o.Threshold > 0 && o.Threshold <= 1) {
		return fmt.Errorf("threshold %v outside (0, 1]: %w", o.Threshold, common.ErrorConfig)
	}
	if o.Window < 1 {
		return fmt.Errorf("window %d must be positive: %w", o.Window, common.ErrorConfig)
	}
	if !(o.NoiseScale > 0) {
		return fmt.Errorf("noise scale %v must be positive: %w", o.NoiseScale, common.ErrorConfig)
	}
	return nil
}

// DetectBoundaries feeds the non-missing samples of curve to an online checker from
// the shallowest depth down and returns every regime change it confirms.
func DetectBoundaries(ctx context.Context, table *model.DerivedTable, curve string, opts Options) ([]model.Boundary, error) {
	logger := utils.GetLogger(ctx)

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	samples, err := table.DepthValues(curve)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	mean0, variance := stat.MeanVariance(values, nil)
	res := []model.Boundary{}
	if len(values) < 2 || !(variance > 0) {
		logger.Debug("curve has no spread, no boundaries", zap.String("curve", curve))
		return res, nil
	}

	checker := NewBocdOnlineChecker(opts.NoiseScale*variance, mean0, opts)
	for _, s := range samples {
		boundary, found := checker.AppendPoint(s)
		if !found {
			continue
		}
		predicted, _ := checker.Prediction(checker.DataSize() - 1)
		logger.Debug("find new boundary", zap.String("curve", curve),
			zap.Float64("depth", boundary.DepthValue.Depth),
			zap.Float64("value", boundary.DepthValue.Value),
			zap.Float64("predicted", predicted),
			zap.Stringer("type", boundary.BoundaryType))
		res = append(res, *boundary)
	}

	logger.Info(fmt.Sprintf("found %v boundaries", len(res)), zap.String("curve", curve))
	return res, nil
}
