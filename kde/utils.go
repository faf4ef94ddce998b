package kde

import (
	"gonum.org/v1/gonum/floats"

	"github.com/uyouii/welllog/model"
)

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

// evaluationGrid spreads num points evenly over [start, stop].
func evaluationGrid(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	return floats.Span(make([]float64, num), start, stop)
}

// clipWeighted keeps the values inside clip together with their weights.
func clipWeighted(x, weights []float64, clip *model.Clip) ([]float64, []float64) {
	if clip == nil || len(x) != len(weights) {
		return x, weights
	}
	keptX, keptW := make([]float64, 0, len(x)), make([]float64, 0, len(x))
	for i, v := range x {
		if clip.Contains(v) {
			keptX = append(keptX, v)
			keptW = append(keptW, weights[i])
		}
	}
	return keptX, keptW
}

func unitWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return weights
}
