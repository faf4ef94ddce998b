package model

import "fmt"

type BoundaryType int

const (
	IncreaseBoundary BoundaryType = 1
	DecreaseBoundary BoundaryType = 2
)

func (t BoundaryType) String() string {
	switch t {
	case IncreaseBoundary:
		return "increase"
	case DecreaseBoundary:
		return "decrease"
	}
	return fmt.Sprintf("BoundaryType(%d)", int(t))
}

// Boundary marks the first sample of a new regime along a curve.
type Boundary struct {
	BoundaryType BoundaryType
	DepthValue   DepthValue
}

type DepthValue struct {
	Depth float64
	Value float64
}

func (v *DepthValue) Less(depthValue DepthValue) bool {
	return v.Value < depthValue.Value
}

// Above reports whether v is shallower than depthValue.
func (v *DepthValue) Above(depthValue DepthValue) bool {
	return v.Depth < depthValue.Depth
}
