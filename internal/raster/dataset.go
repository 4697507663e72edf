package raster

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/airbusgeo/godal"
)

func init() {
	godal.RegisterAll()
}

// Source is anything that can produce a single-band grid.
type Source interface {
	Name() string
	Grid() (*Grid, error)
}

// FileSource reads the first band of a GeoTIFF on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string {
	return filepath.Base(s.Path)
}

func (s FileSource) Grid() (*Grid, error) {
	return Read(s.Path)
}

// GridSource wraps a grid already held in memory.
type GridSource struct {
	Label string
	Data  *Grid
}

func (s GridSource) Name() string {
	return s.Label
}

func (s GridSource) Grid() (*Grid, error) {
	if s.Data == nil {
		return nil, fmt.Errorf("grid source %s is empty", s.Label)
	}
	return s.Data, nil
}

// quietErrors drops GDAL warnings and turns failures into Go errors.
func quietErrors(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return errors.New(msg)
}

// Open opens a raster read-only. Callers own the returned handle.
func Open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(quietErrors))
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	return ds, nil
}

// MetaOf describes an open dataset from its first band.
func MetaOf(ds *godal.Dataset) (Meta, error) {
	structure := ds.Structure()
	meta := Meta{
		Width:      structure.SizeX,
		Height:     structure.SizeY,
		Projection: ds.Projection(),
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return Meta{}, fmt.Errorf("failed to read geotransform: %w", err)
	}
	meta.GeoTransform = gt
	if bands := ds.Bands(); len(bands) > 0 {
		meta.NoData, meta.HasNoData = bands[0].NoData()
	}
	return meta, nil
}

// ReadMeta opens path only long enough to read its metadata.
func ReadMeta(path string) (Meta, error) {
	ds, err := Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer ds.Close()
	meta, err := MetaOf(ds)
	if err != nil {
		return Meta{}, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// Read loads the first band of path as float64 pixels.
func Read(path string) (*Grid, error) {
	ds, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	meta, err := MetaOf(ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	grid := NewGrid(meta)
	if err := bands[0].Read(0, 0, grid.Data, meta.Width, meta.Height); err != nil {
		return nil, fmt.Errorf("failed to read raster data from %s: %w", path, err)
	}
	return grid, nil
}

// WriteFloat32 writes g as a single-band float32 GeoTIFF carrying g.Meta.
func WriteFloat32(path string, g *Grid) error {
	meta := g.Meta
	if len(g.Data) != meta.Width*meta.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrShapeMismatch, len(g.Data), meta.Width, meta.Height)
	}
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, meta.Width, meta.Height)
	if err != nil {
		return fmt.Errorf("failed to create raster %s: %w", path, err)
	}

	writeErr := func() error {
		if err := ds.SetGeoTransform(meta.GeoTransform); err != nil {
			return fmt.Errorf("failed to set geotransform: %w", err)
		}
		if meta.Projection != "" {
			if err := ds.SetProjection(meta.Projection); err != nil {
				return fmt.Errorf("failed to set projection: %w", err)
			}
		}
		band := ds.Bands()[0]
		if meta.HasNoData {
			if err := band.SetNoData(meta.NoData); err != nil {
				return fmt.Errorf("failed to set nodata: %w", err)
			}
		}
		buf := make([]float32, len(g.Data))
		for i, v := range g.Data {
			buf[i] = float32(v)
		}
		return band.Write(0, 0, buf, meta.Width, meta.Height)
	}()

	closeErr := ds.Close()
	if writeErr != nil {
		return fmt.Errorf("failed to write raster %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to flush raster %s: %w", path, closeErr)
	}
	return nil
}
