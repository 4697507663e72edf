package geo

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrEmptyGeometry = errors.New("geometry has no area")

// CentroidFromGeoJSON reads a FeatureCollection, Feature or bare geometry and
// returns the area-weighted centroid of everything it contains as lat, lon.
func CentroidFromGeoJSON(path string) (float64, float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}

	var geometries orb.Collection
	if fc, err := geojson.UnmarshalFeatureCollection(raw); err == nil && fc.Type == "FeatureCollection" {
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	} else if f, err := geojson.UnmarshalFeature(raw); err == nil && f.Type == "Feature" {
		geometries = append(geometries, f.Geometry)
	} else {
		g, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to parse geojson %s: %w", path, err)
		}
		geometries = append(geometries, g.Coordinates)
	}

	centroid, area := planar.CentroidArea(geometries)
	if area <= 0 {
		return 0, 0, fmt.Errorf("%s: %w", path, ErrEmptyGeometry)
	}
	return centroid.Lat(), centroid.Lon(), nil
}
