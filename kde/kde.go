package kde

import (
	"fmt"
	"math"
	"sort"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate/quad"
)

// Univariate gaussian kernel density estimate over the samples of one curve.
type KDEUnivariate struct {
	Weights []float64

	// If gridSize is 0, max(len(x), DefaultGridSize) is used.
	gridSize int

	// An adjustment factor for the bw. Bandwidth becomes bw * adjust.
	bwAdjust float64

	// Defines the length of the grid past the lowest and highest values
	// of x so that the kernel goes to zero. The end points are
	// ``min(x) - cut * bw`` and ``max(x) + cut * bw``.
	cut float64

	// sorted copy of the input values
	Endog []float64

	density []model.Density
	cdf     []model.Cdf
	grid    []float64
	bw      float64
	fited   bool
	kernel  *GaussianKernel
}

func NewKDEUnivariate(endog []float64, weights []float64,
	bwAdjust float64, cut float64, gridSize int, clip *model.Clip) (*KDEUnivariate, error) {
	if len(endog) == 0 {
		return nil, fmt.Errorf("no values for density estimate: %w", common.ErrorEmptyInput)
	}

	if len(weights) == 0 {
		weights = unitWeights(len(endog))
	} else if len(weights) != len(endog) {
		return nil, fmt.Errorf("%d weights for %d values: %w", len(weights), len(endog), common.ErrorInvalidValue)
	}

	// sort values and weights together, the caller keeps its slices
	order := make([]int, len(endog))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return endog[order[i]] < endog[order[j]] })
	sortedX, sortedW := make([]float64, len(endog)), make([]float64, len(endog))
	for i, idx := range order {
		sortedX[i], sortedW[i] = endog[idx], weights[idx]
	}

	if clip != nil {
		sortedX, sortedW = clipWeighted(sortedX, sortedW, clip)
	}
	if len(sortedX) < MinPointCnt {
		return nil, fmt.Errorf("%d values left for density estimate, need %d: %w",
			len(sortedX), MinPointCnt, common.ErrorInvalidValue)
	}

	if bwAdjust == 0 {
		bwAdjust = 1
	}
	if cut == 0 {
		cut = DefaultCut
	}
	if gridSize == 0 {
		gridSize = max(len(sortedX), DefaultGridSize)
	}

	kde := &KDEUnivariate{
		Weights:  sortedW,
		gridSize: gridSize,
		bwAdjust: bwAdjust,
		cut:      cut,
		Endog:    sortedX,
	}

	return kde, nil
}

func (kde *KDEUnivariate) Kdensity() ([]model.Density, float64, error) {
	if kde.fited {
		return kde.density, kde.bw, nil
	}

	kernel := NewGaussianKernel()
	bw := NewNormalReference(kernel).Bandwidth(kde.Endog, kde.Weights)

	bw = bw * kde.bwAdjust
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, 0, fmt.Errorf("bandwidth %v, values have no spread: %w", bw, common.ErrorInvalidValue)
	}
	kernel.SetH(bw)

	a := floats.Min(kde.Endog) - kde.cut*bw
	b := floats.Max(kde.Endog) + kde.cut*bw
	grid := evaluationGrid(a, b, kde.gridSize)

	kernel.SetWeights(kde.Weights)
	res := make([]model.Density, 0, len(grid))
	for _, x := range grid {
		res = append(res, model.Density{X: x, Value: kernel.Density(kde.Endog, x)})
	}

	kde.density = res
	kde.bw = bw
	kde.grid = grid
	kde.fited = true
	kde.kernel = kernel

	return res, bw, nil
}

// Cdf integrates the density over the grid, starting at zero on the first grid point.
func (kde *KDEUnivariate) Cdf() ([]model.Cdf, error) {
	if !kde.fited {
		if _, _, err := kde.Kdensity(); err != nil {
			return nil, err
		}
	}

	if len(kde.cdf) > 0 {
		return kde.cdf, nil
	}

	f := func(x float64) float64 {
		return kde.kernel.Density(kde.Endog, x)
	}

	res := []model.Cdf{{X: kde.grid[0], Value: 0}}

	var cumSum float64

	for i := 1; i < len(kde.grid); i++ {
		integral := quad.Fixed(f, kde.grid[i-1], kde.grid[i], 50, nil, 0)
		cumSum += integral
		res = append(res, model.Cdf{
			X:     kde.grid[i],
			Value: cumSum,
		})
	}

	kde.cdf = res
	return res, nil
}

// Quantile inverts the cdf by linear interpolation between grid points.
func (kde *KDEUnivariate) Quantile(p float64) (*model.QuantileValue, error) {
	cdf, err := kde.Cdf()
	if err != nil {
		return nil, err
	}

	if p <= cdf[0].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[0].X,
		}, nil
	}

	if p >= cdf[len(cdf)-1].Value {
		return &model.QuantileValue{
			Quantile: p,
			Value:    cdf[len(cdf)-1].X,
		}, nil
	}

	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &model.QuantileValue{
				Quantile: p,
				Value:    value,
			}, nil
		}
	}
	return &model.QuantileValue{
		Quantile: p,
		Value:    cdf[len(cdf)-1].X,
	}, nil
}
