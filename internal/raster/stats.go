package raster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Finite returns the finite pixels of values, sorted ascending.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Percentile returns the p-th percentile (0..100) of the finite values,
// interpolating linearly between order statistics. ok is false when there are none.
func Percentile(values []float64, p float64) (float64, bool) {
	return percentileSorted(Finite(values), p)
}

func percentileSorted(sorted []float64, p float64) (float64, bool) {
	if len(sorted) == 0 {
		return 0, false
	}
	q := math.Min(math.Max(p/100, 0), 1)
	return stat.Quantile(q, stat.LinInterp, sorted, nil), true
}

// Stats summarises the finite pixels of a grid.
type Stats struct {
	Valid int
	Total int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64 // population standard deviation
	Low   float64 // percentile at the requested low bound
	High  float64 // percentile at the requested high bound
}

// Constant reports whether every finite pixel holds the same value, or there are none.
func (s Stats) Constant() bool {
	return s.Valid == 0 || s.Min == s.Max
}

// Describe computes Stats over g with percentiles low and high (0..100).
func Describe(g *Grid, low, high float64) Stats {
	sorted := Finite(g.Data)
	s := Stats{Valid: len(sorted), Total: len(g.Data)}
	if s.Valid == 0 {
		return s
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Mean, s.Std = stat.PopMeanStdDev(sorted, nil)
	s.Low, _ = percentileSorted(sorted, low)
	s.High, _ = percentileSorted(sorted, high)
	return s
}
