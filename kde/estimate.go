package kde

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
	BwAdjust   float64 `yaml:"bw_adjust"`
	Cut        float64 `yaml:"cut"`
	GridSize   int     `yaml:"grid_size"`
	ClipZScore float64 `yaml:"clip_zscore"`
}

func (o Options) Validate() error {
	if !(o.BwAdjust > 0) || o.Cut < 0 || o.GridSize < 0 || o.ClipZScore < 0 {
		return fmt.Errorf("kde options %+v out of range: %w", o, common.ErrorConfig)
	}
	return nil
}

func DefaultOptions() Options {
	return Options{
		BwAdjust:   1.0,
		Cut:        DefaultCut,
		GridSize:   DefaultGridSize,
		ClipZScore: DefaultClipZScore,
	}
}

// NewEstimator prepares an estimate over values, dropping outliers when opts.ClipZScore is set.
func NewEstimator(values []float64, opts Options) (*KDEUnivariate, error) {
	var clip *model.Clip
	if opts.ClipZScore > 0 && len(values) > 1 {
		mean, stddev := stat.MeanStdDev(values, nil)
		clip = &model.Clip{
			Lower: mean - stddev*opts.ClipZScore,
			Upper: mean + stddev*opts.ClipZScore,
		}
	}
	return NewKDEUnivariate(values, nil, opts.BwAdjust, opts.Cut, opts.GridSize, clip)
}

// Threshold returns the lower and upper cut-offs of a curve read from the integrated
// density estimate built with opts rather than the order statistics.
func Threshold(ctx context.Context, table *model.DerivedTable, curve string, lower, upper float64,
	opts Options) (res model.Clip, err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Threshold recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("curve", curve))
			res, err = model.Clip{}, fmt.Errorf("density estimate panicked: %v: %w", r, common.ErrorInvalidValue)
		}
	}()

	if !(lower >= 0 && lower < upper && upper <= 1) {
		return model.Clip{}, fmt.Errorf("percentile bounds %v, %v must satisfy 0 <= lower < upper <= 1: %w",
			lower, upper, common.ErrorConfig)
	}
	if err := opts.Validate(); err != nil {
		return model.Clip{}, err
	}

	values, err := table.Values(curve)
	if err != nil {
		return model.Clip{}, err
	}
	if len(values) == 0 {
		return model.Clip{}, fmt.Errorf("curve %q has no non-missing samples: %w", curve, common.ErrorEmptyInput)
	}

	k, err := NewEstimator(values, opts)
	if err != nil {
		return model.Clip{}, fmt.Errorf("curve %q: %w", curve, err)
	}
	low, err := k.Quantile(lower)
	if err != nil {
		return model.Clip{}, fmt.Errorf("curve %q: %w", curve, err)
	}
	high, err := k.Quantile(upper)
	if err != nil {
		return model.Clip{}, fmt.Errorf("curve %q: %w", curve, err)
	}

	logger.Debug("kde threshold", zap.String("curve", curve), zap.Float64("bw", k.bw),
		zap.Float64("lower", low.Value), zap.Float64("upper", high.Value))
	return model.Clip{Lower: low.Value, Upper: high.Value}, nil
}
