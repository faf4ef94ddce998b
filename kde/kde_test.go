package kde

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/model"
)

func evenValues(n int) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = float64(i)
	}
	return res
}

func TestKdensity(t *testing.T) {
	values := []float64{5, 3, 9, 1, 7, 2, 8, 4, 6, 10}
	input := append([]float64(nil), values...)

	k, err := NewEstimator(values, DefaultOptions())
	require.NoError(t, err)
	density, bw, err := k.Kdensity()
	require.NoError(t, err)
	assert.Equal(t, input, values, "input must not be reordered")
	assert.Greater(t, bw, 0.0)
	require.Len(t, density, DefaultGridSize)
	assert.InDelta(t, 1-DefaultCut*bw, density[0].X, 1e-9)
	assert.InDelta(t, 10+DefaultCut*bw, density[len(density)-1].X, 1e-9)

	area := 0.0
	for i := 1; i < len(density); i++ {
		width := density[i].X - density[i-1].X
		area += width * (density[i].Value + density[i-1].Value) / 2
		assert.GreaterOrEqual(t, density[i].Value, 0.0)
	}
	assert.InDelta(t, 1.0, area, 0.01)
}

func TestNewEstimator_ClipZScore(t *testing.T) {
	values := append(evenValues(20), 1000)
	opts := DefaultOptions()
	opts.ClipZScore = 2

	k, err := NewEstimator(values, opts)
	require.NoError(t, err)
	density, _, err := k.Kdensity()
	require.NoError(t, err)
	assert.Less(t, density[len(density)-1].X, 1000.0)
}

func TestNewEstimator_Errors(t *testing.T) {
	_, err := NewEstimator(nil, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorEmptyInput)

	_, err = NewEstimator([]float64{4}, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	_, err = NewKDEUnivariate([]float64{1, 2}, []float64{1}, 1, 0, 0, nil)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)

	k, err := NewEstimator([]float64{4, 4, 4}, DefaultOptions())
	require.NoError(t, err)
	_, _, err = k.Kdensity()
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
	_, err = k.Quantile(0.5)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestQuantile(t *testing.T) {
	k, err := NewKDEUnivariate(evenValues(100), nil, 1, 0, 0, nil)
	require.NoError(t, err)

	cdf, err := k.Cdf()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cdf[0].Value)
	assert.InDelta(t, 1.0, cdf[len(cdf)-1].Value, 0.01)
	for i := 1; i < len(cdf); i++ {
		assert.GreaterOrEqual(t, cdf[i].Value, cdf[i-1].Value)
	}

	median, err := k.Quantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 49.5, median.Value, 0.5)
}

func TestThreshold(t *testing.T) {
	samples := make([]model.Sample, 101)
	depths := make([]float64, 101)
	for i := 0; i < 100; i++ {
		samples[i] = model.Present(float64(i))
		depths[i] = 1000 + float64(i)*0.5
	}
	samples[100] = model.Missing()
	depths[100] = 1050
	table, err := model.NewDerivedTable(depths, []model.Column{{CurveInfo: model.CurveInfo{Mnemonic: "GR"}, Samples: samples}})
	require.NoError(t, err)

	clip, err := Threshold(context.Background(), table, "GR", 0.25, 0.75, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 24.75, clip.Lower, 2)
	assert.InDelta(t, 74.25, clip.Upper, 2)
	assert.InDelta(t, 99, clip.Lower+clip.Upper, 0.5)

	_, err = Threshold(context.Background(), table, "GR", 0.75, 0.25, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorConfig)
	_, err = Threshold(context.Background(), table, "NPLS", 0.25, 0.75, DefaultOptions())
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = Threshold(context.Background(), table, "GR", 0.25, 0.75, Options{BwAdjust: 0})
	assert.ErrorIs(t, err, common.ErrorConfig)
}

func TestThreshold_Options(t *testing.T) {
	// 196 samples around 50 with four spikes of 500
	samples := make([]model.Sample, 200)
	depths := make([]float64, 200)
	for i := range samples {
		depths[i] = 1000 + float64(i)*0.5
		samples[i] = model.Present(40 + float64(i%21))
		if i%50 == 25 {
			samples[i] = model.Present(500)
		}
	}
	table, err := model.NewDerivedTable(depths, []model.Column{{CurveInfo: model.CurveInfo{Mnemonic: "GR"}, Samples: samples}})
	require.NoError(t, err)
	ctx := context.Background()

	base, err := Threshold(ctx, table, "GR", 0.05, 0.99, DefaultOptions())
	require.NoError(t, err)
	assert.Greater(t, base.Upper, 100.0)

	clipped := DefaultOptions()
	clipped.ClipZScore = 3
	res, err := Threshold(ctx, table, "GR", 0.05, 0.99, clipped)
	require.NoError(t, err)
	assert.Less(t, res.Upper, 100.0)

	wide := DefaultOptions()
	wide.BwAdjust = 4
	res, err = Threshold(ctx, table, "GR", 0.05, 0.99, wide)
	require.NoError(t, err)
	assert.NotEqual(t, base, res)
	assert.Less(t, res.Lower, base.Lower)
}

func TestNormalReference(t *testing.T) {
	x := evenValues(50)
	nr := NewNormalReference(nil)
	unweighted := nr.Bandwidth(x, nil)
	assert.InDelta(t, unweighted, nr.Bandwidth(x, unitWeights(len(x))), 1e-9)

	// halving the effective sample size widens the kernel
	weights := unitWeights(len(x))
	for i := 0; i < len(weights); i += 2 {
		weights[i] = 0
	}
	assert.Greater(t, nr.Bandwidth(x, weights), unweighted)

	grid := evaluationGrid(-1, 1, 5)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, grid)
}
