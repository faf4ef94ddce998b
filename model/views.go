package model

import (
	"fmt"

	"github.com/uyouii/welllog/common"
)

type Clip struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

func (c Clip) Contains(v float64) bool {
	return v >= c.Lower && v <= c.Upper
}

func (c Clip) Width() float64 {
	return c.Upper - c.Lower
}

type Density struct {
	X     float64
	Value float64
}

// Cdf is the cumulative probability up to X.
type Cdf struct {
	X     float64
	Value float64
}

type QuantileValue struct {
	Value    float64 `json:"v"`
	Quantile float64 `json:"q"`
}

// SummaryStatistics is computed over the non-missing samples of one curve.
type SummaryStatistics struct {
	Curve       string          `json:"curve"`
	Unit        string          `json:"unit,omitempty"`
	Count       int             `json:"count"`
	Mean        float64         `json:"mean"`
	StdDev      float64         `json:"std"` // NaN when Count == 1
	Min         float64         `json:"min"`
	Max         float64         `json:"max"`
	Percentiles []QuantileValue `json:"percentiles"`
}

func (s *SummaryStatistics) Percentile(quantile float64) (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, q := range s.Percentiles {
		if q.Quantile == quantile {
			return q.Value, true
		}
	}
	return 0, false
}

// CategoryLabels names the two sides of a classification threshold.
type CategoryLabels struct {
	Below string `json:"below" yaml:"below"` // value <= threshold
	Above string `json:"above" yaml:"above"`
}

var LithologyLabels = CategoryLabels{Below: "Sand", Above: "Shale"}

func (l CategoryLabels) Validate() error {
	if l.Below == "" || l.Above == "" {
		return fmt.Errorf("category labels must not be empty: %w", common.ErrorConfig)
	}
	if l.Below == l.Above {
		return fmt.Errorf("category labels must differ, both are %q: %w", l.Below, common.ErrorConfig)
	}
	return nil
}

// Run is a depth-contiguous interval of samples sharing one category.
type Run struct {
	Top      float64 `json:"top"`
	Base     float64 `json:"base"`
	Count    int     `json:"count"`
	Category string  `json:"category"`
}

func (r Run) String() string {
	return fmt.Sprintf("[%v, %v] %s (%d samples)", r.Top, r.Base, r.Category, r.Count)
}

type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count float64 `json:"count"` // density when the histogram is normalized
}

// BoxStats follows the usual boxplot convention: whiskers reach the furthest sample
// within 1.5 IQR of the box, anything beyond is an outlier.
type BoxStats struct {
	Curve        string       `json:"curve"`
	Count        int          `json:"count"`
	Mean         float64      `json:"mean"`
	Median       float64      `json:"median"`
	Q1           float64      `json:"q1"`
	Q3           float64      `json:"q3"`
	LowerWhisker float64      `json:"lower_whisker"`
	UpperWhisker float64      `json:"upper_whisker"`
	Notch        Clip         `json:"notch"` // median +- 1.57 IQR / sqrt(n)
	Outliers     []DepthValue `json:"outliers,omitempty"`
}

func (b *BoxStats) IQR() float64 {
	return b.Q3 - b.Q1
}
