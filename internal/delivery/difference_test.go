package delivery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/forest-guardian/geodiff/internal/geo"
	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/forest-guardian/geodiff/internal/sentinel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayLimit(t *testing.T) {
	tests := []struct {
		low, high, want float64
	}{
		{0.01, 0.02, MinDisplayLimit},
		{-0.049, 0.049, MinDisplayLimit},
		{-0.3, 0.1, 0.3},
		{0.1, 0.1, 0.1},
		{-0.2, -0.1, 0.2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v_%v", tt.low, tt.high), func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayLimit(tt.low, tt.high))
		})
	}
}

func TestNeedsAmplification(t *testing.T) {
	assert.False(t, NeedsAmplification(0.01))
	assert.False(t, NeedsAmplification(0.2))
	assert.True(t, NeedsAmplification(0.0099999))
	assert.True(t, NeedsAmplification(0))
}

func index(meta raster.Meta, raw ...float64) *sentinel.Index {
	g := &raster.Grid{Meta: meta, Data: raw}
	return &sentinel.Index{Raw: g, Normalized: g.Map(func(v float64) float64 { return (v + 1) / 2 })}
}

func TestComputeDifferenceUniform(t *testing.T) {
	meta := raster.Meta{Width: 2, Height: 2, GeoTransform: [6]float64{0, 1, 0, 0, 0, -1}}
	diff, err := ComputeDifference(index(meta, 0.5, 0.5, 0.5, 0.5), index(meta, 0.6, 0.6, 0.6, 0.6))
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0.1, 0.1, 0.1, 0.1}, diff.Grid.Data, 1e-12)
	assert.InDelta(t, 0.1, diff.Limit, 1e-12)
	require.NotNil(t, diff.Amplified)
	assert.InDelta(t, 0.5, diff.AmplifiedLimit, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, diff.Amplified.Data, 1e-12)
	// the raw difference is never scaled
	assert.InDelta(t, 0.1, diff.Grid.Data[0], 1e-12)
	assert.Equal(t, meta, diff.Grid.Meta)
}

func TestComputeDifferenceFloorsSmallLimit(t *testing.T) {
	meta := raster.Meta{Width: 4, Height: 1}
	diff, err := ComputeDifference(index(meta, 0, 0, 0, 0), index(meta, 0.01, 0.01, 0.01, 0.01))
	require.NoError(t, err)
	assert.Equal(t, MinDisplayLimit, diff.Limit)
	assert.InDelta(t, MinDisplayLimit*AmplificationFactor, diff.AmplifiedLimit, 1e-12)
}

func TestComputeDifferenceWithVariance(t *testing.T) {
	meta := raster.Meta{Width: 4, Height: 1}
	diff, err := ComputeDifference(index(meta, 0, 0, 0, 0), index(meta, -0.4, 0, 0.2, 0.4))
	require.NoError(t, err)
	assert.Nil(t, diff.Amplified)
	assert.Zero(t, diff.AmplifiedLimit)
	assert.GreaterOrEqual(t, diff.Stats.Std, AmplificationThreshold)
}

func TestComputeDifferenceGridMismatch(t *testing.T) {
	a := raster.Meta{Width: 2, Height: 1, GeoTransform: [6]float64{0, 1, 0, 0, 0, -1}}
	b := a
	b.GeoTransform[3] = 10
	_, err := ComputeDifference(index(a, 0, 0), index(b, 0, 0))
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
}

func TestMosaicError(t *testing.T) {
	err := &MosaicError{Date: SecondDate, Band: sentinel.NIR, Quadrant: geo.SE, Err: sentinel.ErrBandNotFound}
	assert.Equal(t, "date second, band B8 (nir), quadrant SE: band not found", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("%w: %w", ErrAnalysisFailed, err), sentinel.ErrBandNotFound))

	resolveErr := &MosaicError{Date: FirstDate, Quadrant: geo.NO, Err: errors.New("boom")}
	assert.Equal(t, "date first, quadrant NO: boom", resolveErr.Error())
}
