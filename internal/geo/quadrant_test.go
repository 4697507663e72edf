package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadrantsTileTheROI(t *testing.T) {
	roi := NewROI(44.1026, 9.8241, 100, 100)
	side := roi.SideDegrees()
	assert.InDelta(t, 10000/111320.0, side, 1e-12)

	bounds := map[Quadrant][4]float64{}
	var area float64
	union := roi.Center.Bound()
	for _, q := range Quadrants {
		b, err := roi.Quadrant(q)
		require.NoError(t, err)
		assert.InDelta(t, side, b.Right()-b.Left(), 1e-12)
		assert.InDelta(t, side, b.Top()-b.Bottom(), 1e-12)
		bounds[q] = [4]float64{b.Left(), b.Bottom(), b.Right(), b.Top()}
		area += (b.Right() - b.Left()) * (b.Top() - b.Bottom())
		union = union.Union(b)
	}

	full := roi.Bound()
	assert.Equal(t, full, union)
	assert.InDelta(t, (full.Right()-full.Left())*(full.Top()-full.Bottom()), area, 1e-12)

	// shared edges use identical coordinates
	assert.Equal(t, bounds[NE][0], bounds[NO][2])
	assert.Equal(t, bounds[SE][0], bounds[SO][2])
	assert.Equal(t, bounds[NE][1], bounds[SE][3])
	assert.Equal(t, bounds[NO][1], bounds[SO][3])
}

func TestUnknownQuadrant(t *testing.T) {
	_, err := NewROI(0, 0, 10, 10).Quadrant("NW")
	assert.Error(t, err)
}

func TestFeatureCollection(t *testing.T) {
	fc := NewROI(38.72, -9.14, 10, 500).FeatureCollection()
	require.Len(t, fc.Features, 4)

	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quadrant":"NE"`)
	assert.Contains(t, string(raw), `"Polygon"`)
	for i, q := range Quadrants {
		assert.Equal(t, string(q), fc.Features[i].Properties["quadrant"])
	}
}

func TestParseQuadrantPaths(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]string
		wantErr bool
	}{
		{"exact set", map[string]string{"NE": "a", "NO": "b", "SO": "c", "SE": "d"}, false},
		{"missing one", map[string]string{"NE": "a", "NO": "b", "SO": "c"}, true},
		{"wrong label", map[string]string{"NE": "a", "NW": "b", "SO": "c", "SE": "d"}, true},
		{"extra label", map[string]string{"NE": "a", "NO": "b", "SO": "c", "SE": "d", "C": "e"}, true},
		{"lowercase", map[string]string{"ne": "a", "no": "b", "so": "c", "se": "d"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuadrantPaths(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuadrantSet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", got[NE])
			assert.Equal(t, "d", got[SE])
			assert.NoError(t, got.Validate())
		})
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, QuadrantPaths{NE: "x"}.Validate(), ErrInvalidQuadrantSet)
	assert.ErrorIs(t, QuadrantPaths{NE: "a", NO: "b", SO: "c", "XX": "d"}.Validate(), ErrInvalidQuadrantSet)
}
