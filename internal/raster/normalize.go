package raster

import "math"

const (
	NormalizeLow  = 2
	NormalizeHigh = 98
	minRange      = 1e-6
)

// Normalize stretches g into [0,1] between its 2nd and 98th percentiles.
// Non-finite pixels map to 0. A constant grid, or one without finite pixels,
// yields all zeros and degenerate is true.
func Normalize(g *Grid) (out *Grid, degenerate bool) {
	stats := Describe(g, NormalizeLow, NormalizeHigh)
	if stats.Constant() {
		return NewGrid(g.Meta), true
	}
	span := math.Max(stats.High-stats.Low, minRange)
	return g.Map(func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return clamp((v-stats.Low)/span, 0, 1)
	}), false
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
