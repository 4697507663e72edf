package output

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/geodiff/internal/raster"
	"golang.org/x/image/font/basicfont"
)

const (
	targetSize    = 512
	margin        = 20
	titleHeight   = 30
	colorbarWidth = 20
	labelWidth    = 70
	colorbarTicks = 5
)

// Figure describes a colour-mapped rendering of one raster.
type Figure struct {
	Title    string
	Colormap Colormap
	Min      float64
	Max      float64
	Label    string // colorbar caption
}

// upscale is the integer nearest-neighbour zoom that brings the longest side near targetSize.
func upscale(w, h int) int {
	longest := max(w, h)
	if longest == 0 || longest >= targetSize {
		return 1
	}
	return targetSize / longest
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Colorize maps every pixel of g through the figure's colormap and bounds.
// Non-finite pixels are left white.
func Colorize(g *raster.Grid, fig Figure, zoom int) *image.RGBA {
	w, h := g.Meta.Width, g.Meta.Height
	img := image.NewRGBA(image.Rect(0, 0, w*zoom, h*zoom))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := g.At(x, y)
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if finite(v) {
				c = fig.Colormap.At(Scale(v, fig.Min, fig.Max))
			}
			for dy := 0; dy < zoom; dy++ {
				for dx := 0; dx < zoom; dx++ {
					img.SetRGBA(x*zoom+dx, y*zoom+dy, c)
				}
			}
		}
	}
	return img
}

// SaveColormapped writes g as a PNG figure with a title and a colorbar legend.
func SaveColormapped(path string, g *raster.Grid, fig Figure) error {
	if g.Meta.Width == 0 || g.Meta.Height == 0 {
		return fmt.Errorf("cannot render empty raster to %s", path)
	}
	zoom := upscale(g.Meta.Width, g.Meta.Height)
	body := Colorize(g, fig, zoom)
	bw, bh := body.Bounds().Dx(), body.Bounds().Dy()

	width := margin + bw + margin + colorbarWidth + labelWidth
	height := titleHeight + bh + 2*margin

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fig.Title, float64(width)/2, float64(margin), 0.5, 0.5)

	top := titleHeight + margin
	dc.DrawImage(body, margin, top)

	drawColorbar(dc, fig, float64(margin+bw+margin), float64(top), float64(bh))

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

func drawColorbar(dc *gg.Context, fig Figure, x, y, h float64) {
	rows := int(h)
	for i := 0; i < rows; i++ {
		t := 1 - float64(i)/math.Max(h-1, 1)
		dc.SetColor(fig.Colormap.At(t))
		dc.DrawRectangle(x, y+float64(i), colorbarWidth, 1)
		dc.Fill()
	}
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, colorbarWidth, h)
	dc.Stroke()

	for i := 0; i < colorbarTicks; i++ {
		f := float64(i) / float64(colorbarTicks-1)
		value := fig.Max - f*(fig.Max-fig.Min)
		ty := y + f*h
		dc.DrawLine(x+colorbarWidth, ty, x+colorbarWidth+4, ty)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(value), x+colorbarWidth+6, ty, 0, 0.5)
	}
	if fig.Label != "" {
		dc.DrawStringAnchored(fig.Label, x+colorbarWidth/2, y+h+margin/2, 0.5, 0.5)
	}
}

func formatTick(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" || s == "-" || s == "" {
		return "0"
	}
	return s
}

func toByte(v float64) uint8 {
	if !finite(v) {
		return 0
	}
	return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}

// SaveRGB stacks three [0,1] grids into a true-colour PNG at native resolution.
func SaveRGB(path string, r, g, b *raster.Grid) error {
	if err := raster.SameShape(r.Meta, g.Meta); err != nil {
		return fmt.Errorf("rgb composite %s: %w", path, err)
	}
	if err := raster.SameShape(r.Meta, b.Meta); err != nil {
		return fmt.Errorf("rgb composite %s: %w", path, err)
	}
	w, h := r.Meta.Width, r.Meta.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: toByte(r.At(x, y)), G: toByte(g.At(x, y)), B: toByte(b.At(x, y)), A: 255})
		}
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// SaveGray writes a [0,1] grid as a grayscale PNG at native resolution.
func SaveGray(path string, g *raster.Grid) error {
	img := Colorize(g, Figure{Colormap: Gray, Min: 0, Max: 1}, 1)
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
