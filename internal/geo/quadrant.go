package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Quadrant labels one of the four partitions of the area of interest.
// NO and SO are north-west and south-west.
type Quadrant string

const (
	NE Quadrant = "NE"
	NO Quadrant = "NO"
	SO Quadrant = "SO"
	SE Quadrant = "SE"
)

// Quadrants is the fixed processing order. Mosaics are built in this order,
// so on overlapping footprints the later quadrant wins.
var Quadrants = []Quadrant{NE, NO, SO, SE}

// DegreesPerMeter approximates one degree of latitude as 111.32 km.
const DegreesPerMeter = 1 / 111320.0

var ErrInvalidQuadrantSet = errors.New("invalid quadrant set: expected exactly NE, NO, SO, SE")

// ROI is the square area of interest around a center point, split into four quadrants.
type ROI struct {
	Center    orb.Point
	Scale     float64 // meters per pixel
	MaxPixels int     // pixels per quadrant side
}

func NewROI(lat, lon, scale float64, maxPixels int) ROI {
	return ROI{Center: orb.Point{lon, lat}, Scale: scale, MaxPixels: maxPixels}
}

// SideDegrees is the side length of a single quadrant.
func (r ROI) SideDegrees() float64 {
	return r.Scale * float64(r.MaxPixels) * DegreesPerMeter
}

func (r ROI) Bound() orb.Bound {
	s := r.SideDegrees()
	lon, lat := r.Center.Lon(), r.Center.Lat()
	return orb.Bound{Min: orb.Point{lon - s, lat - s}, Max: orb.Point{lon + s, lat + s}}
}

func (r ROI) Quadrant(q Quadrant) (orb.Bound, error) {
	s := r.SideDegrees()
	lon, lat := r.Center.Lon(), r.Center.Lat()
	switch q {
	case NE:
		return orb.Bound{Min: orb.Point{lon, lat}, Max: orb.Point{lon + s, lat + s}}, nil
	case NO:
		return orb.Bound{Min: orb.Point{lon - s, lat}, Max: orb.Point{lon, lat + s}}, nil
	case SO:
		return orb.Bound{Min: orb.Point{lon - s, lat - s}, Max: orb.Point{lon, lat}}, nil
	case SE:
		return orb.Bound{Min: orb.Point{lon, lat - s}, Max: orb.Point{lon + s, lat}}, nil
	}
	return orb.Bound{}, fmt.Errorf("unknown quadrant %q", q)
}

// FeatureCollection exports the quadrant footprints as GeoJSON polygons.
func (r ROI) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, q := range Quadrants {
		b, _ := r.Quadrant(q)
		f := geojson.NewFeature(b.ToPolygon())
		f.Properties["quadrant"] = string(q)
		f.Properties["scale"] = r.Scale
		f.Properties["max_pixels"] = r.MaxPixels
		fc.Append(f)
	}
	return fc
}

// QuadrantPaths maps each quadrant to the archive produced for it at one date.
type QuadrantPaths map[Quadrant]string

// ParseQuadrantPaths validates that the keys are exactly the four quadrant labels.
func ParseQuadrantPaths(in map[string]string) (QuadrantPaths, error) {
	if len(in) != len(Quadrants) {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidQuadrantSet, describeKeys(in))
	}
	out := make(QuadrantPaths, len(in))
	for _, q := range Quadrants {
		path, ok := in[string(q)]
		if !ok {
			return nil, fmt.Errorf("%w: got %s", ErrInvalidQuadrantSet, describeKeys(in))
		}
		out[q] = path
	}
	return out, nil
}

// Validate checks a mapping built in code rather than parsed from input.
func (qp QuadrantPaths) Validate() error {
	if len(qp) != len(Quadrants) {
		return ErrInvalidQuadrantSet
	}
	for _, q := range Quadrants {
		if _, ok := qp[q]; !ok {
			return ErrInvalidQuadrantSet
		}
	}
	return nil
}

func describeKeys(in map[string]string) string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}
