package utils

import (
	"math"
	"strconv"
)

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}

// FloatString renders f with at most round decimals, "NaN" for undefined values.
func FloatString(f float64, round int32) string {
	return strconv.FormatFloat(FormatFloat(f, round), 'f', -1, 64)
}
