package kde

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

type Kernel interface {
	NormalReferenceConstant() float64
}

// GaussianKernel is the standard normal kernel scaled to width h. The
// sample weights are kept normalized to sum to one.
type GaussianKernel struct {
	h       float64
	weights []float64

	referenceConstant float64
}

func NewGaussianKernel() *GaussianKernel {
	return &GaussianKernel{h: 1}
}

func (k *GaussianKernel) SetH(h float64) {
	k.h = h
}

// SetWeights replaces the sample weights, nil weighs samples equally.
func (k *GaussianKernel) SetWeights(weights []float64) {
	if weights == nil {
		k.weights = nil
		return
	}
	k.weights = make([]float64, len(weights))
	if sum := floats.Sum(weights); sum != 0 {
		floats.ScaleTo(k.weights, 1/sum, weights)
	}
}

func (k *GaussianKernel) Shape(u float64) float64 {
	return distuv.UnitNormal.Prob(u)
}

// NormalReferenceConstant is the factor of the second order rule-of-thumb
// bandwidth, C = 2 * (sqrt(pi) * R(K) * nu!^3 / (2 nu (2 nu)! k_nu^2))^(1/(2 nu + 1)).
func (k *GaussianKernel) NormalReferenceConstant() float64 {
	if k.referenceConstant == 0 {
		const nu = 2
		roughness := 1 / (2 * math.Sqrt(math.Pi))
		secondMoment := 1.0
		numerator := math.Sqrt(math.Pi) * math.Pow(factorial(nu), 3) * roughness
		denom := 2 * nu * factorial(2*nu) * secondMoment * secondMoment
		k.referenceConstant = 2 * math.Pow(numerator/denom, 1.0/(2*nu+1))
	}
	return k.referenceConstant
}

// Density evaluates the estimate built from xs at x.
func (k *GaussianKernel) Density(xs []float64, x float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, xi := range xs {
		w := 1 / float64(len(xs))
		if k.weights != nil {
			w = k.weights[i]
		}
		sum += k.Shape((xi-x)/k.h) * w
	}
	return sum / k.h
}
