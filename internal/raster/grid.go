package raster

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrShapeMismatch = errors.New("raster shapes differ")
	ErrGridMismatch  = errors.New("raster grids differ")
)

// geoTransformTolerance absorbs float noise from GDAL round trips.
const geoTransformTolerance = 1e-9

// Meta is the spatial description of a single-band raster.
type Meta struct {
	Width        int
	Height       int
	GeoTransform [6]float64
	Projection   string // WKT
	NoData       float64
	HasNoData    bool
}

// Grid holds row-major pixels alongside their metadata.
type Grid struct {
	Meta Meta
	Data []float64
}

func NewGrid(meta Meta) *Grid {
	return &Grid{Meta: meta, Data: make([]float64, meta.Width*meta.Height)}
}

// Filled returns a grid with every pixel set to v.
func Filled(meta Meta, v float64) *Grid {
	g := NewGrid(meta)
	for i := range g.Data {
		g.Data[i] = v
	}
	return g
}

func (g *Grid) At(x, y int) float64 {
	return g.Data[y*g.Meta.Width+x]
}

func (g *Grid) Set(x, y int, v float64) {
	g.Data[y*g.Meta.Width+x] = v
}

// Map applies fn to every pixel and returns a new grid with the same metadata.
func (g *Grid) Map(fn func(float64) float64) *Grid {
	out := NewGrid(g.Meta)
	for i, v := range g.Data {
		out.Data[i] = fn(v)
	}
	return out
}

// SameShape reports ErrShapeMismatch when a and b differ in size.
func SameShape(a, b Meta) error {
	if a.Width != b.Width || a.Height != b.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	return nil
}

// SameGrid requires a and b to cover the same pixels: equal size and geotransform.
func SameGrid(a, b Meta) error {
	if err := SameShape(a, b); err != nil {
		return fmt.Errorf("%w: %w", ErrGridMismatch, err)
	}
	for i := range a.GeoTransform {
		if math.Abs(a.GeoTransform[i]-b.GeoTransform[i]) > geoTransformTolerance {
			return fmt.Errorf("%w: geotransform %v vs %v", ErrGridMismatch, a.GeoTransform, b.GeoTransform)
		}
	}
	return nil
}
