package plotspec

import (
	"github.com/uyouii/welllog/model"
)

type Kind string

const (
	KindLine      Kind = "line"
	KindHistogram Kind = "histogram"
	KindBox       Kind = "box"
	KindCrossplot Kind = "crossplot"
	KindShaded    Kind = "shaded"
)

// Spec is a complete rendering instruction. Panels are laid out left to right.
type Spec struct {
	Kind   Kind
	Title  string
	Panels []Panel
}

type Panel struct {
	Title string
	X     Axis
	Y     Axis
	// second x axis of a twin track, nil unless the track holds two curves
	SecondaryX *Axis

	Series     []Series
	References []ReferenceLine
	Fills      []Fill
	Bins       []model.Bin
	Box        *model.BoxStats
	ColorMap   *ColorMap
	Legend     []LegendEntry
}

type Axis struct {
	Label    string
	Range    model.Clip
	Inverted bool
	Log      bool
	// tick labels above the plot area
	Top bool
}

type Marker string

const (
	MarkerLine   Marker = "line"
	MarkerPoints Marker = "points"
)

type Series struct {
	Name   string
	Curve  string
	X      []float64
	Y      []float64
	Marker Marker
	Color  string
	Width  float64
	// indexes into X where a new line segment starts after missing samples
	Gaps []int
	// drawn against the panel's SecondaryX
	Secondary bool
	// per point values mapped through the panel's ColorMap, NaN keeps Color
	ColorValues []float64
}

// Segments splits the series at its gaps.
func (s Series) Segments() [][2][]float64 {
	res := [][2][]float64{}
	start := 0
	for _, gap := range append(append([]int{}, s.Gaps...), len(s.X)) {
		if gap > start {
			res = append(res, [2][]float64{s.X[start:gap], s.Y[start:gap]})
		}
		start = gap
	}
	return res
}

type Orientation string

const (
	// constant x
	Vertical Orientation = "vertical"
	// constant y, a depth marker on log tracks
	Horizontal Orientation = "horizontal"
)

type ReferenceLine struct {
	Name        string      `yaml:"name"`
	Value       float64     `yaml:"value"`
	Orientation Orientation `yaml:"orientation,omitempty"`
	Color       string      `yaml:"color,omitempty"`
}

// Fill shades between Baseline and the curve value at every listed depth.
type Fill struct {
	Label    string
	Color    string
	Baseline float64
	Depths   []float64
	Values   []float64
}

type ColorMap struct {
	Curve string
	Label string
	Name  string
	Min   float64
	Max   float64
}

type LegendEntry struct {
	Label string
	Color string
}
