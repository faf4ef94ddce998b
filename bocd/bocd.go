package bocd

import (
	"math"

	"github.com/uyouii/welllog/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// BocdOnlineChecker runs bayesian online change point detection over samples
// appended in depth order, with a gaussian model of known variance.
type BocdOnlineChecker struct {
	varX  float64 // known variance
	mean0 float64 // prior mean of every new run

	hazard    float64
	threshold float64
	window    int

	datas        []model.DepthValue
	means        []float64
	invVariances []float64 // 1 / Variance
	// normalized log probability of every run length after the last sample
	lastLogRunProbs []float64

	pMeans []float64 // prediction mean
	pVars  []float64 // prediction var

	boundaries    []*model.Boundary
	lastBoundaryI int
}

func NewBocdOnlineChecker(varx, mean0 float64, opts Options) *BocdOnlineChecker {
	return &BocdOnlineChecker{
		varX:      varx,
		mean0:     mean0,
		hazard:    opts.Hazard,
		threshold: opts.Threshold,
		window:    opts.Window,

		datas:           []model.DepthValue{},
		means:           []float64{mean0},
		invVariances:    []float64{1 / varx},
		lastLogRunProbs: []float64{0},

		pMeans: []float64{},
		pVars:  []float64{},

		boundaries:    []*model.Boundary{},
		lastBoundaryI: -1,
	}
}

func (b *BocdOnlineChecker) AppendPoint(depthValue model.DepthValue) (*model.Boundary, bool) {
	b.datas = append(b.datas, depthValue)

	t := len(b.datas) // current step

	// Make model predictions.
	b.pMeans = append(b.pMeans, b.predictionMean())
	b.pVars = append(b.pVars, b.predictionVar())

	// 3. Evaluate predictive probabilities.
	// density of the current value under every run length hypothesis
	logPreProbs := b.logOfPreProb(t, depthValue.Value)

	// 4. Calculate growth probabilities.
	logGrowthProbs := b.calLogGrowthProbs(logPreProbs)

	// 5. Calculate changepoint probabilities.
	// probability that a new run starts after the current sample, a scalar
	logChangePointProb := b.calLogChangePointProb(logPreProbs)

	// 6. Calculate evidence
	logRunProbs := append([]float64{logChangePointProb}, logGrowthProbs...)

	// 7. Determine run length distribution.
	b.lastLogRunProbs = normalizeLog(logRunProbs)

	// 8. update params
	b.updateGaussianParams(depthValue.Value)

	return b.checkBoundary(t)
}

// checkBoundary looks for a short run that became likely; run length j means the
// last j samples form the current regime, so its first sample is datas[t-j].
func (b *BocdOnlineChecker) checkBoundary(t int) (*model.Boundary, bool) {
	runLenProb := expAll(b.lastLogRunProbs)

	for j := 1; j < len(runLenProb) && j <= b.window; j++ {
		if runLenProb[j] < b.threshold {
			continue
		}
		loc := t - j
		if loc == 0 || loc == b.lastBoundaryI {
			break
		}

		current := b.datas[loc]
		boundary := &model.Boundary{DepthValue: current}

		lastPoint := b.datas[loc-1]
		if lastPoint.Less(current) {
			boundary.BoundaryType = model.IncreaseBoundary
		} else {
			boundary.BoundaryType = model.DecreaseBoundary
		}

		b.boundaries = append(b.boundaries, boundary)
		b.lastBoundaryI = loc
		return boundary, true
	}
	return nil, false
}

func (b *BocdOnlineChecker) updateGaussianParams(x float64) {
	newInvVariances := make([]float64, len(b.invVariances))
	for i := range b.invVariances {
		newInvVariances[i] = b.invVariances[i] + 1/b.varX
	}

	for i := range b.means {
		b.means[i] = (b.means[i]*b.invVariances[i] + x/b.varX) / newInvVariances[i]
	}
	b.invVariances = append([]float64{1 / b.varX}, newInvVariances...)
	b.means = append([]float64{b.mean0}, b.means...)
}

func (b *BocdOnlineChecker) logh() float64 {
	return math.Log(b.hazard)
}

func (b *BocdOnlineChecker) log1mh() float64 {
	return math.Log(1 - b.hazard)
}

func (b *BocdOnlineChecker) calLogChangePointProb(logPreProbs []float64) float64 {
	data := make([]float64, len(logPreProbs))

	for i := range logPreProbs {
		data[i] = logPreProbs[i] + b.lastLogRunProbs[i] + b.logh()
	}

	return floats.LogSumExp(data)
}

func (b *BocdOnlineChecker) calLogGrowthProbs(logPreProbs []float64) []float64 {
	logGrowthProbs := make([]float64, len(logPreProbs))

	for i := range logPreProbs {
		logGrowthProbs[i] = logPreProbs[i] + b.lastLogRunProbs[i] + b.log1mh()
	}

	return logGrowthProbs
}

func (b *BocdOnlineChecker) logOfPreProb(t int, x float64) []float64 {
	// the posterior predictive for each run length hypothesis.
	logProbs := make([]float64, t)

	variances := b.calVariances()

	for i := 0; i < t; i++ {
		normalDist := distuv.Normal{
			Mu:    b.means[i],
			Sigma: math.Sqrt(variances[i]),
		}
		logProbs[i] = normalDist.LogProb(x)
	}

	return logProbs
}

func (b *BocdOnlineChecker) calVariances() []float64 {
	res := make([]float64, len(b.invVariances))
	for i := range b.invVariances {
		res[i] = 1/b.invVariances[i] + b.varX
	}
	return res
}

func (b *BocdOnlineChecker) predictionMean() float64 {
	return expectation(b.lastLogRunProbs, b.means)
}

func (b *BocdOnlineChecker) predictionVar() float64 {
	return expectation(b.lastLogRunProbs, b.calVariances())
}

// Prediction returns the mean and variance predicted for the i-th appended sample
// before it was seen.
func (b *BocdOnlineChecker) Prediction(i int) (float64, float64) {
	return b.pMeans[i], b.pVars[i]
}

func (b *BocdOnlineChecker) DataSize() int {
	return len(b.datas)
}

func (b *BocdOnlineChecker) GetBoundaries() []*model.Boundary {
	return b.boundaries
}

func (b *BocdOnlineChecker) LastBoundary() (*model.Boundary, bool) {
	if len(b.boundaries) > 0 {
		return b.boundaries[len(b.boundaries)-1], true
	}
	return nil, false
}
