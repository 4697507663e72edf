package sentinel

import (
	"fmt"
	"math"

	"github.com/forest-guardian/geodiff/internal/raster"
)

// minDenominator guards the index ratio against division by (near) zero.
const minDenominator = 1e-6

// Index is a normalized difference index in raw [-1,1] and display [0,1] form.
// Both grids share the metadata of the first source.
type Index struct {
	Raw        *raster.Grid
	Normalized *raster.Grid
}

// NormalizedDifference computes (a-b)/(a+b) pixel by pixel. Non-finite inputs
// count as 0 and pixels whose denominator is within 1e-6 of zero yield 0.
func NormalizedDifference(a, b float64) float64 {
	a, b = finiteOrZero(a), finiteOrZero(b)
	sum := a + b
	if math.Abs(sum) <= minDenominator {
		return 0
	}
	return math.Min(math.Max((a-b)/sum, -1), 1)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ComputeNDVI derives the vegetation index from red and near-infrared mosaics.
// The output carries the red source metadata.
func ComputeNDVI(red, nir raster.Source) (*Index, error) {
	redGrid, err := red.Grid()
	if err != nil {
		return nil, fmt.Errorf("failed to read red band %s: %w", red.Name(), err)
	}
	nirGrid, err := nir.Grid()
	if err != nil {
		return nil, fmt.Errorf("failed to read nir band %s: %w", nir.Name(), err)
	}
	return ndvi(redGrid, nirGrid)
}

func ndvi(red, nir *raster.Grid) (*Index, error) {
	if err := raster.SameShape(red.Meta, nir.Meta); err != nil {
		return nil, fmt.Errorf("ndvi: %w", err)
	}
	raw := raster.NewGrid(red.Meta)
	normalized := raster.NewGrid(red.Meta)
	for i := range raw.Data {
		v := NormalizedDifference(nir.Data[i], red.Data[i])
		raw.Data[i] = v
		normalized.Data[i] = (v + 1) / 2
	}
	return &Index{Raw: raw, Normalized: normalized}, nil
}
