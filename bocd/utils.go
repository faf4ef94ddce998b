package bocd

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// normalizeLog shifts log weights so that their exponentials sum to one.
func normalizeLog(logWeights []float64) []float64 {
	res := make([]float64, len(logWeights))
	copy(res, logWeights)
	floats.AddConst(-floats.LogSumExp(logWeights), res)
	return res
}

func expAll(logWeights []float64) []float64 {
	res := make([]float64, len(logWeights))
	for i, v := range logWeights {
		res[i] = math.Exp(v)
	}
	return res
}

// expectation weighs values by the probabilities of the matching run lengths.
func expectation(logWeights, values []float64) float64 {
	n := min(len(logWeights), len(values))
	return floats.Dot(expAll(logWeights[:n]), values[:n])
}
