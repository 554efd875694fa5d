package detection

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createRectangleImage creates an image with a rectangle outline
func createRectangleImage(width, height int, rectX1, rectY1, rectX2, rectY2 int) *image.RGBA {
	img := createTestImage(width, height, color.White)

	// Draw rectangle outline
	for x := rectX1; x <= rectX2; x++ {
		img.Set(x, rectY1, color.Black)
		img.Set(x, rectY2, color.Black)
	}
	for y := rectY1; y <= rectY2; y++ {
		img.Set(rectX1, y, color.Black)
		img.Set(rectX2, y, color.Black)
	}

	return img
}

// fillRect paints a solid axis-aligned rectangle, inclusive of both corners
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// fillConvex paints every pixel whose center lies inside the convex polygon
// poly, given in clockwise image order
func fillConvex(img *image.RGBA, poly []vec2, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			inside := true
			for i := range poly {
				a := poly[i]
				n := poly[(i+1)%len(poly)]
				if (n.X-a.X)*(p.Y-a.Y)-(n.Y-a.Y)*(p.X-a.X) < 0 {
					inside = false
					break
				}
			}
			if inside {
				img.Set(x, y, c)
			}
		}
	}
}

// createCircleImage creates an image with a circle outline
func createCircleImage(width, height, cx, cy, radius int) *image.RGBA {
	img := createTestImage(width, height, color.White)

	// Draw circle outline using midpoint algorithm
	x := radius
	y := 0
	err := 0

	for x >= y {
		img.Set(cx+x, cy+y, color.Black)
		img.Set(cx+y, cy+x, color.Black)
		img.Set(cx-y, cy+x, color.Black)
		img.Set(cx-x, cy+y, color.Black)
		img.Set(cx-x, cy-y, color.Black)
		img.Set(cx-y, cy-x, color.Black)
		img.Set(cx+y, cy-x, color.Black)
		img.Set(cx+x, cy-y, color.Black)

		if err <= 0 {
			y += 1
			err += 2*y + 1
		}
		if err > 0 {
			x -= 1
			err -= 2*x + 1
		}
	}

	return img
}

func assertNear(t *testing.T, name string, want, got geometry.NormalizedPoint, tol float64) {
	t.Helper()
	if math.Abs(want.X-got.X) > tol || math.Abs(want.Y-got.Y) > tol {
		t.Errorf("%s = (%.3f, %.3f), want (%.3f, %.3f)", name, got.X, got.Y, want.X, want.Y)
	}
}

func TestDetectRectangles_FilledRectangle(t *testing.T) {
	img := createTestImage(200, 100, color.White)
	fillRect(img, 40, 20, 119, 69, color.Black)

	result, err := DetectRectangles(img, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", result.Count)
	}
	if result.Width != 200 || result.Height != 100 {
		t.Errorf("Expected frame 200x100, got %dx%d", result.Width, result.Height)
	}

	obs := result.Observations[0]
	assertNear(t, "top-left", geometry.NormalizedPoint{X: 0.2, Y: 0.2}, obs.Corners.TopLeft, 0.03)
	assertNear(t, "top-right", geometry.NormalizedPoint{X: 0.6, Y: 0.2}, obs.Corners.TopRight, 0.03)
	assertNear(t, "bottom-left", geometry.NormalizedPoint{X: 0.2, Y: 0.7}, obs.Corners.BottomLeft, 0.03)
	assertNear(t, "bottom-right", geometry.NormalizedPoint{X: 0.6, Y: 0.7}, obs.Corners.BottomRight, 0.03)

	if obs.Confidence < 0.85 || obs.Confidence > 1 {
		t.Errorf("Expected confidence in [0.85, 1], got %f", obs.Confidence)
	}
	if math.Abs(obs.Area-0.2) > 0.03 {
		t.Errorf("Expected area near 0.2, got %f", obs.Area)
	}
	if obs.FillColor != "#000000" {
		t.Errorf("Expected fill color #000000, got %s", obs.FillColor)
	}
	if obs.Bounds.X1 > 40 || obs.Bounds.X2 < 119 || obs.Bounds.Y1 > 20 || obs.Bounds.Y2 < 69 {
		t.Errorf("Bounds %+v do not enclose the rectangle", obs.Bounds)
	}
	for _, c := range geometry.Corners() {
		if !obs.Corners.At(c).InFrame() {
			t.Errorf("%s corner outside frame: %+v", c, obs.Corners.At(c))
		}
	}
}

func TestDetectRectangles_Outline(t *testing.T) {
	img := createRectangleImage(100, 100, 20, 20, 80, 80)

	result, err := DetectRectangles(img, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", result.Count)
	}
	assertNear(t, "top-left", geometry.NormalizedPoint{X: 0.2, Y: 0.2}, result.Observations[0].Corners.TopLeft, 0.03)
	assertNear(t, "bottom-right", geometry.NormalizedPoint{X: 0.8, Y: 0.8}, result.Observations[0].Corners.BottomRight, 0.03)
}

func TestDetectRectangles_Rotated(t *testing.T) {
	img := createTestImage(200, 200, color.White)

	// 100x60 rectangle centered at (100,100), turned 20 degrees clockwise on screen
	s, c := math.Sincos(20 * math.Pi / 180)
	corner := func(dx, dy float64) vec2 {
		return vec2{X: 100 + dx*c - dy*s, Y: 100 + dx*s + dy*c}
	}
	tl, tr, br, bl := corner(-50, -30), corner(50, -30), corner(50, 30), corner(-50, 30)
	fillConvex(img, []vec2{tl, tr, br, bl}, color.Black)

	result, err := DetectRectangles(img, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", result.Count)
	}

	norm := func(v vec2) geometry.NormalizedPoint {
		return geometry.NormalizedPoint{X: v.X / 200, Y: v.Y / 200}
	}
	got := result.Observations[0].Corners
	assertNear(t, "top-left", norm(tl), got.TopLeft, 0.03)
	assertNear(t, "top-right", norm(tr), got.TopRight, 0.03)
	assertNear(t, "bottom-right", norm(br), got.BottomRight, 0.03)
	assertNear(t, "bottom-left", norm(bl), got.BottomLeft, 0.03)
}

func TestDetectRectangles_RejectsCircle(t *testing.T) {
	img := createCircleImage(100, 100, 50, 50, 30)

	result, err := DetectRectangles(img, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("Expected circle to be rejected, got %d rectangles (confidence %f)",
			result.Count, result.Observations[0].Confidence)
	}
}

func TestDetectRectangles_MinArea(t *testing.T) {
	img := createTestImage(200, 200, color.White)
	fillRect(img, 90, 90, 99, 99, color.Black) // about 0.25% of the frame

	strict := DefaultOptions()
	strict.MinArea = 0.01
	result, _ := DetectRectangles(img, strict)
	if result.Count != 0 {
		t.Errorf("Expected small rectangle filtered by MinArea, got %d", result.Count)
	}

	loose := DefaultOptions()
	loose.MinArea = 0.001
	result, _ = DetectRectangles(img, loose)
	if result.Count != 1 {
		t.Errorf("Expected small rectangle with low MinArea, got %d", result.Count)
	}
}

func TestDetectRectangles_SortedByArea(t *testing.T) {
	img := createTestImage(300, 200, color.White)
	fillRect(img, 10, 10, 59, 49, color.Black)
	fillRect(img, 120, 40, 279, 179, color.RGBA{0, 0, 200, 255})

	result, err := DetectRectangles(img, DefaultOptions())
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("Expected 2 rectangles, got %d", result.Count)
	}
	if result.Observations[0].Area < result.Observations[1].Area {
		t.Errorf("Expected largest first, got %f then %f",
			result.Observations[0].Area, result.Observations[1].Area)
	}
	if result.Observations[0].FillColor != "#0000c8" {
		t.Errorf("Expected larger rectangle to be blue, got %s", result.Observations[0].FillColor)
	}
	if result.Observations[0].ID == result.Observations[1].ID {
		t.Error("Expected distinct observation ids")
	}
}

func TestDetectRectangles_Downscaled(t *testing.T) {
	img := createTestImage(1600, 800, color.White)
	fillRect(img, 400, 200, 1199, 599, color.Black)

	opts := DefaultOptions()
	opts.MaxDimension = 400
	result, err := DetectRectangles(img, opts)
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Expected 1 rectangle, got %d", result.Count)
	}
	if result.Width != 1600 || result.Height != 800 {
		t.Errorf("Expected source frame size, got %dx%d", result.Width, result.Height)
	}

	obs := result.Observations[0]
	assertNear(t, "top-left", geometry.NormalizedPoint{X: 0.25, Y: 0.25}, obs.Corners.TopLeft, 0.03)
	assertNear(t, "bottom-right", geometry.NormalizedPoint{X: 0.75, Y: 0.75}, obs.Corners.BottomRight, 0.03)

	// bounds are reported in source pixels
	if math.Abs(float64(obs.Bounds.X1-400)) > 20 || math.Abs(float64(obs.Bounds.Y2-600)) > 20 {
		t.Errorf("Expected bounds near (400,200)-(1200,600), got %+v", obs.Bounds)
	}
}

func TestDetectRectangles_EmptyImage(t *testing.T) {
	img := createTestImage(100, 100, color.White)

	result, err := DetectRectangles(img, Options{})
	if err != nil {
		t.Fatalf("DetectRectangles failed: %v", err)
	}

	// Empty image should have no rectangles
	if result.Count != 0 {
		t.Errorf("Expected 0 rectangles in empty image, got %d", result.Count)
	}
	if result.Observations == nil {
		t.Error("Expected empty, non-nil observations")
	}
}

func TestDetectRectangles_EmptyFrame(t *testing.T) {
	_, err := DetectRectangles(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions())
	if err == nil {
		t.Error("Expected error for empty frame")
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{Tolerance: 0.5}.withDefaults()
	want := DefaultOptions()
	want.Tolerance = 0.5
	if got != want {
		t.Errorf("withDefaults() = %+v, want %+v", got, want)
	}
}
