package output

import (
	"image/color"
	"math"
)

// Colormap maps [0,1] onto evenly spaced colour stops.
type Colormap struct {
	Name  string
	stops []color.RGBA
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func reversed(stops []color.RGBA) []color.RGBA {
	out := make([]color.RGBA, len(stops))
	for i, c := range stops {
		out[len(stops)-1-i] = c
	}
	return out
}

// ColorBrewer 11-class palettes.
var (
	rdYlGn = []color.RGBA{
		hex(0xa50026), hex(0xd73027), hex(0xf46d43), hex(0xfdae61), hex(0xfee08b), hex(0xffffbf),
		hex(0xd9ef8b), hex(0xa6d96a), hex(0x66bd63), hex(0x1a9850), hex(0x006837),
	}
	rdBu = []color.RGBA{
		hex(0x67001f), hex(0xb2182b), hex(0xd6604d), hex(0xf4a582), hex(0xfddbc7), hex(0xf7f7f7),
		hex(0xd1e5f0), hex(0x92c5de), hex(0x4393c3), hex(0x2166ac), hex(0x053061),
	}
)

var (
	// RdYlGn runs from red at 0 to green at 1; used for vegetation indexes.
	RdYlGn = Colormap{Name: "RdYlGn", stops: rdYlGn}
	// RdBuR runs from blue at 0 to red at 1; used for signed differences.
	RdBuR = Colormap{Name: "RdBu_r", stops: reversed(rdBu)}
	Gray  = Colormap{Name: "gray", stops: []color.RGBA{hex(0x000000), hex(0xffffff)}}
)

// At returns the colour at t, clamped to [0,1]. NaN maps to 0.
func (c Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(c.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(c.stops)-1 {
		return c.stops[len(c.stops)-1]
	}
	f := pos - float64(i)
	a, b := c.stops[i], c.stops[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, f),
		G: lerp(a.G, b.G, f),
		B: lerp(a.B, b.B, f),
		A: 255,
	}
}

func lerp(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}

// Scale maps v from [lo, hi] onto [0,1]. An empty range maps everything to 0.
func Scale(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return math.Min(math.Max((v-lo)/(hi-lo), 0), 1)
}
