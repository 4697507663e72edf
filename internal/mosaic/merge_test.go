package mosaic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pixel = 0.25

func wgs84(t *testing.T) string {
	t.Helper()
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	require.NoError(t, err)
	defer sr.Close()
	wkt, err := sr.WKT()
	require.NoError(t, err)
	return wkt
}

// writeTile writes a 2x2 tile whose top-left corner is (x, y).
func writeTile(t *testing.T, dir, name string, x, y, value float64) string {
	t.Helper()
	meta := raster.Meta{
		Width:        2,
		Height:       2,
		GeoTransform: [6]float64{x, pixel, 0, y, 0, -pixel},
		Projection:   wgs84(t),
	}
	path := filepath.Join(dir, name)
	require.NoError(t, raster.WriteFloat32(path, raster.Filled(meta, value)))
	return path
}

func TestBuildSingleInputIsVerbatimCopy(t *testing.T) {
	dir := t.TempDir()
	src := writeTile(t, dir, "B04.tif", 0, 0.5, 0.2)
	out := filepath.Join(dir, "merged_band_4.tif")

	got, err := Build([]string{src}, out, nil)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	want, err := os.ReadFile(src)
	require.NoError(t, err)
	have, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want, have)
}

func TestBuildMergesQuadrants(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTile(t, dir, "ne.tif", 0, 0.5, 1),
		writeTile(t, dir, "no.tif", -0.5, 0.5, 2),
		writeTile(t, dir, "so.tif", -0.5, 0, 3),
		writeTile(t, dir, "se.tif", 0, 0, 4),
	}
	out := filepath.Join(dir, "merged.tif")
	_, err := Build(paths, out, nil)
	require.NoError(t, err)

	g, err := raster.Read(out)
	require.NoError(t, err)
	require.Equal(t, 4, g.Meta.Width)
	require.Equal(t, 4, g.Meta.Height)
	assert.InDeltaSlice(t, []float64{-0.5, pixel, 0, 0.5, 0, -pixel}, g.Meta.GeoTransform[:], 1e-9)
	assert.Equal(t, []float64{
		2, 2, 1, 1,
		2, 2, 1, 1,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, g.Data)
}

func TestBuildOverlapLastWins(t *testing.T) {
	dir := t.TempDir()
	first := writeTile(t, dir, "first.tif", 0, 0.5, 1)
	second := writeTile(t, dir, "second.tif", 0, 0.5, 2)

	out := filepath.Join(dir, "a.tif")
	_, err := Build([]string{first, second}, out, nil)
	require.NoError(t, err)
	g, err := raster.Read(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2}, g.Data)

	out = filepath.Join(dir, "b.tif")
	_, err = Build([]string{second, first}, out, nil)
	require.NoError(t, err)
	g, err = raster.Read(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, g.Data)
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Build(nil, filepath.Join(dir, "none.tif"), nil)
	assert.ErrorIs(t, err, ErrNoRastersToMerge)

	good := writeTile(t, dir, "good.tif", 0, 0.5, 1)
	bad := filepath.Join(dir, "bad.tif")
	require.NoError(t, os.WriteFile(bad, []byte("not a tiff"), 0o644))
	_, err = Build([]string{good, bad}, filepath.Join(dir, "out.tif"), nil)
	assert.ErrorIs(t, err, ErrMergeFailed)

	_, err = Build([]string{filepath.Join(dir, "missing.tif")}, filepath.Join(dir, "copy.tif"), nil)
	assert.ErrorIs(t, err, ErrMergeFailed)
}
