package sentinel

import (
	"math"
	"testing"

	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		band  Band
		want  string
	}{
		{"underscore", []string{"/x/T32_B02.tif", "/x/T32_B04.tif"}, Red, "/x/T32_B04.tif"},
		{"dot separator", []string{"/x/response.B3.tif", "/x/response.B8.tif"}, NIR, "/x/response.B8.tif"},
		{"no separator", []string{"/x/b2.tif"}, Blue, "/x/b2.tif"},
		{"zero padded", []string{"/x/scene_B08.tiff"}, NIR, "/x/scene_B08.tiff"},
		{"upper case suffix", []string{"/x/SCENE_B3.TIF"}, Green, "/x/SCENE_B3.TIF"},
		{"first match wins", []string{"/x/a_B4.tif", "/x/b_B04.tif"}, Red, "/x/a_B4.tif"},
		{"skips other bands", []string{"/x/B12.tif", "/x/B8A.tif", "/x/B2.tif"}, Blue, "/x/B2.tif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Locate(tt.paths, tt.band)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateNotFound(t *testing.T) {
	_, err := Locate([]string{"/x/B02.tif", "/x/B03.tif", "/x/B04.tif", "/x/B8A.tif", "/x/B8.jp2"}, NIR)
	assert.ErrorIs(t, err, ErrBandNotFound)

	_, err = Locate(nil, Red)
	assert.ErrorIs(t, err, ErrBandNotFound)
}

func TestBandNames(t *testing.T) {
	assert.Equal(t, "red", Red.Name())
	assert.Equal(t, "nir", NIR.Name())
	assert.Equal(t, "B8", NIR.String())
	assert.Equal(t, []Band{Blue, Green, Red, NIR}, Bands)
}

func TestNormalizedDifferenceZeroDenominator(t *testing.T) {
	pairs := [][2]float64{{0, 0}, {1e-7, -1e-7}, {5e-7, 5e-7}, {-3e-7, 0}, {1, -1}, {math.NaN(), 0}, {math.Inf(1), math.Inf(-1)}}
	for _, p := range pairs {
		got := NormalizedDifference(p[0], p[1])
		assert.Equal(t, 0.0, got, "nir=%v red=%v", p[0], p[1])
	}
}

func TestNormalizedDifferenceRange(t *testing.T) {
	values := []float64{-2, -0.5, 0, 0.1, 0.2, 0.6, 0.8, 3, 1e4, math.NaN()}
	for _, nir := range values {
		for _, red := range values {
			v := NormalizedDifference(nir, red)
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	assert.InDelta(t, 0.5, NormalizedDifference(0.6, 0.2), 1e-12)
	assert.InDelta(t, 0.6, NormalizedDifference(0.8, 0.2), 1e-12)
	assert.Equal(t, 1.0, NormalizedDifference(0.7, math.NaN()))
}

func TestComputeNDVI(t *testing.T) {
	meta := raster.Meta{Width: 3, Height: 1, GeoTransform: [6]float64{1, 0.1, 0, 2, 0, -0.1}, Projection: "WKT"}
	red := raster.GridSource{Label: "red", Data: &raster.Grid{Meta: meta, Data: []float64{0.2, 0, math.NaN()}}}
	nirMeta := meta
	nirMeta.Projection = "other"
	nir := raster.GridSource{Label: "nir", Data: &raster.Grid{Meta: nirMeta, Data: []float64{0.6, 0, 0.4}}}

	index, err := ComputeNDVI(red, nir)
	require.NoError(t, err)
	assert.Equal(t, meta, index.Raw.Meta)
	assert.Equal(t, meta, index.Normalized.Meta)
	assert.InDeltaSlice(t, []float64{0.5, 0, 1}, index.Raw.Data, 1e-12)
	for i, raw := range index.Raw.Data {
		assert.Equal(t, (raw+1)/2, index.Normalized.Data[i])
	}
}

func TestComputeNDVIShapeMismatch(t *testing.T) {
	red := raster.GridSource{Label: "red", Data: raster.Filled(raster.Meta{Width: 2, Height: 2}, 0.2)}
	nir := raster.GridSource{Label: "nir", Data: raster.Filled(raster.Meta{Width: 3, Height: 2}, 0.6)}
	_, err := ComputeNDVI(red, nir)
	assert.ErrorIs(t, err, raster.ErrShapeMismatch)

	_, err = ComputeNDVI(raster.GridSource{Label: "missing"}, nir)
	assert.Error(t, err)
}
