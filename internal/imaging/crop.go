package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
)

// Crop extracts a rectangular pixel region from a frame, optionally scaled.
func Crop(img image.Image, region image.Rectangle, scale float64) (*PreviewResult, error) {
	bounds := img.Bounds()

	if region.Empty() {
		return nil, fmt.Errorf("invalid crop region %v: empty", region)
	}
	if !region.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside frame bounds %v", region, bounds)
	}

	cropped := imaging.Crop(img, region)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return encodePreview(cropped)
}

// CropQuad extracts the bounding box of a normalized quad, grown by margin
// (a fraction of the box size on each side) and clipped to the frame.
func CropQuad(img image.Image, q geometry.Quad, margin, scale float64) (*PreviewResult, error) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q.Polygon() {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	mx := (maxX - minX) * margin
	my := (maxY - minY) * margin

	region := image.Rect(
		bounds.Min.X+int(math.Floor((minX-mx)*w)),
		bounds.Min.Y+int(math.Floor((minY-my)*h)),
		bounds.Min.X+int(math.Ceil((maxX+mx)*w)),
		bounds.Min.Y+int(math.Ceil((maxY+my)*h)),
	).Intersect(bounds)

	return Crop(img, region, scale)
}
