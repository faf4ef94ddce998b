package kde

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Bandwidth picks the kernel width for sorted, weighted samples.
type Bandwidth interface {
	Bandwidth(x, weights []float64) float64
}

// NormalReference is the rule-of-thumb width for a normal reference density,
// scaled by the kernel's constant.
type NormalReference struct {
	kernel Kernel
}

func NewNormalReference(kernel Kernel) *NormalReference {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	return &NormalReference{kernel: kernel}
}

func (nr *NormalReference) Bandwidth(x, weights []float64) float64 {
	n := float64(len(x))
	if weights != nil {
		// effective sample size
		sum, sumSq := 0.0, 0.0
		for _, w := range weights {
			sum += w
			sumSq += w * w
		}
		if sumSq > 0 {
			n = sum * sum / sumSq
		}
	}
	return nr.kernel.NormalReferenceConstant() * spread(x, weights) * math.Pow(n, -0.2)
}

// spread is the smaller of the standard deviation and the normalized
// interquartile range, falling back to the deviation when the IQR is zero.
func spread(x, weights []float64) float64 {
	const iqrToSigma = 1.349

	iqr := (stat.Quantile(0.75, stat.Empirical, x, weights) - stat.Quantile(0.25, stat.Empirical, x, weights)) / iqrToSigma
	sigma := stat.StdDev(x, weights)
	if iqr > 0 && iqr < sigma {
		return iqr
	}
	return sigma
}
