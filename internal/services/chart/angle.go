package chart

import "math"

const fullCircle = 360.0

// NormalizeLongitude folds any finite angle into [0, 360).
func NormalizeLongitude(x float64) float64 {
	n := math.Mod(math.Mod(x, fullCircle)+fullCircle, fullCircle)
	if n == fullCircle || n == 0 {
		// -0 and values that round up to 360.
		return 0
	}
	return n
}

// validLongitude reports whether x is inside [0, 360).
func validLongitude(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x < fullCircle
}

// minorArc returns the smaller angle between two longitudes, in [0, 180].
func minorArc(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180 {
		d = fullCircle - d
	}
	return d
}
