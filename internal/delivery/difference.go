package delivery

import (
	"fmt"
	"math"

	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/forest-guardian/geodiff/internal/sentinel"
)

const (
	DifferenceLow          = 5
	DifferenceHigh         = 95
	MinDisplayLimit        = 0.05
	AmplificationThreshold = 0.01
	AmplificationFactor    = 5
)

// DisplayLimit is the half-width of the symmetric colour range for a difference map.
func DisplayLimit(low, high float64) float64 {
	return math.Max(math.Max(math.Abs(low), math.Abs(high)), MinDisplayLimit)
}

// NeedsAmplification reports whether a difference is too flat to read; the
// threshold itself does not qualify.
func NeedsAmplification(std float64) bool {
	return std < AmplificationThreshold
}

// Difference is the change between two index rasters.
type Difference struct {
	Grid  *raster.Grid // second minus first, never amplified
	Stats raster.Stats
	Limit float64

	Amplified      *raster.Grid // nil unless NeedsAmplification
	AmplifiedLimit float64
}

// ComputeDifference subtracts the raw first index from the raw second one.
// Both must cover the same grid.
func ComputeDifference(first, second *sentinel.Index) (*Difference, error) {
	if err := raster.SameGrid(first.Raw.Meta, second.Raw.Meta); err != nil {
		return nil, err
	}
	grid := raster.NewGrid(first.Raw.Meta)
	for i := range grid.Data {
		grid.Data[i] = second.Raw.Data[i] - first.Raw.Data[i]
	}

	stats := raster.Describe(grid, DifferenceLow, DifferenceHigh)
	if stats.Valid == 0 {
		return nil, fmt.Errorf("difference has no finite pixels")
	}
	diff := &Difference{
		Grid:  grid,
		Stats: stats,
		Limit: DisplayLimit(stats.Low, stats.High),
	}
	if NeedsAmplification(stats.Std) {
		diff.Amplified = grid.Map(func(v float64) float64 { return v * AmplificationFactor })
		diff.AmplifiedLimit = diff.Limit * AmplificationFactor
	}
	return diff, nil
}
