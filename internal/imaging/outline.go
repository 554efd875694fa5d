package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
)

// PreviewResult is a rendered frame preview encoded as base64 PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// OutlineOptions controls how Outline draws.
type OutlineOptions struct {
	// Color is the stroke color as "#RRGGBB". Empty means red.
	Color string

	// Thickness is the stroke width in source pixels. Zero means 2. It is
	// capped at the frame's shorter side.
	Thickness int

	// MaxDimension scales the preview down so neither side exceeds it.
	// Zero keeps the source size.
	MaxDimension int
}

// Outline draws each quad as a closed polygon on a copy of the frame.
//
// Quad corners are normalized frame coordinates. Corners outside the frame
// are drawn clipped. The top-left corner of every quad gets a filled marker
// so the corner order is visible in the preview.
func Outline(img image.Image, quads []geometry.Quad, opts OutlineOptions) (*PreviewResult, error) {
	stroke, err := parseHexColor(opts.Color)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = 2
	}
	thickness = min(thickness, bounds.Dx(), bounds.Dy())

	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	// Edges are stepped only within the frame plus one brush width.
	clip := bounds.Inset(-thickness)
	for _, q := range quads {
		poly := q.Polygon()
		for i := range poly {
			a, b, ok := clipSegment(toPixelF(poly[i], bounds), toPixelF(poly[(i+1)%len(poly)], bounds), clip)
			if ok {
				drawLine(canvas, a, b, thickness, stroke)
			}
		}
		if p := toPixelF(q.TopLeft, bounds); inside(p, clip) {
			drawDot(canvas, roundPoint(p), 2*thickness+1, stroke)
		}
	}

	var out image.Image = canvas
	if opts.MaxDimension > 0 {
		out = imaging.Fit(canvas, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}
	return encodePreview(out)
}

// parseHexColor parses "#RRGGBB" (or "RRGGBB"). Empty means red.
func parseHexColor(hex string) (color.RGBA, error) {
	if hex == "" {
		return color.RGBA{255, 0, 0, 255}, nil
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}, nil
}

// toPixelF maps a normalized point to pixel-center coordinates in bounds.
func toPixelF(p geometry.NormalizedPoint, bounds image.Rectangle) geometry.NormalizedPoint {
	return geometry.NormalizedPoint{
		X: float64(bounds.Min.X) + p.X*float64(bounds.Dx()) - 0.5,
		Y: float64(bounds.Min.Y) + p.Y*float64(bounds.Dy()) - 0.5,
	}
}

func roundPoint(p geometry.NormalizedPoint) image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

func inside(p geometry.NormalizedPoint, r image.Rectangle) bool {
	return p.X >= float64(r.Min.X) && p.X <= float64(r.Max.X-1) &&
		p.Y >= float64(r.Min.Y) && p.Y <= float64(r.Max.Y-1)
}

// clipSegment trims the segment a-b to r with the Liang-Barsky method and
// rounds the ends to pixels. ok is false when nothing of it lies in r.
func clipSegment(a, b geometry.NormalizedPoint, r image.Rectangle) (image.Point, image.Point, bool) {
	if math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsNaN(b.X) || math.IsNaN(b.Y) {
		return image.Point{}, image.Point{}, false
	}
	xmin, xmax := float64(r.Min.X), float64(r.Max.X-1)
	ymin, ymax := float64(r.Min.Y), float64(r.Max.Y-1)
	dx, dy := b.X-a.X, b.Y-a.Y

	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, a.X - xmin},
		{dx, xmax - a.X},
		{-dy, a.Y - ymin},
		{dy, ymax - a.Y},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return image.Point{}, image.Point{}, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return image.Point{}, image.Point{}, false
		}
	}

	start := geometry.NormalizedPoint{X: a.X + t0*dx, Y: a.Y + t0*dy}
	end := geometry.NormalizedPoint{X: a.X + t1*dx, Y: a.Y + t1*dy}
	return roundPoint(start), roundPoint(end), true
}

// drawLine strokes a line from a to b with Bresenham's algorithm, stamping a
// square brush of the given width at every step.
func drawLine(img *image.RGBA, a, b image.Point, width int, c color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		drawDot(img, image.Point{X: x, Y: y}, width, c)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// drawDot fills a size x size square centered on p, clipped to the image.
func drawDot(img *image.RGBA, p image.Point, size int, c color.RGBA) {
	r := image.Rect(p.X-size/2, p.Y-size/2, p.X-size/2+size, p.Y-size/2+size).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func encodePreview(img image.Image) (*PreviewResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
