package detection

import (
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
)

// Bounds represents a rectangular bounding box in pixel coordinates of the
// source frame.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (inclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Observation is one rectangle found in a frame.
//
// Corners are in normalized frame coordinates (0 to 1, origin top-left, Y
// down) and are what the reconstructor consumes. The observation ID is fresh
// for every detection; callers key stored rectangles by it.
type Observation struct {
	// ID uniquely identifies this observation.
	ID uuid.UUID `json:"id"`

	// Corners are the four logical corners in normalized coordinates.
	Corners geometry.Quad `json:"corners"`

	// Bounds is the pixel bounding box of the corners in the source frame.
	Bounds Bounds `json:"bounds"`

	// Area is the corner polygon's area as a fraction of the frame area.
	Area float64 `json:"area"`

	// FillColor is the hex color sampled at the polygon center.
	// May be empty if the sample is fully transparent.
	FillColor string `json:"fill_color,omitempty"`

	// Confidence indicates how rectangular the shape is (0.0 to 1.0).
	// It is the fraction of contour pixels lying on the corner polygon's edges.
	Confidence float64 `json:"confidence"`
}

// ObservationsResult contains all rectangles detected in a frame.
type ObservationsResult struct {
	// Observations are sorted by area (largest first).
	Observations []Observation `json:"observations"`

	// Count is the number of observations.
	Count int `json:"count"`

	// Width and Height are the source frame size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Options tunes DetectRectangles. Zero fields fall back to DefaultOptions.
type Options struct {
	// MinArea is the smallest accepted polygon area, as a fraction of the
	// frame area. Typical: 0.005-0.05.
	MinArea float64

	// Tolerance is the minimum confidence (0.0 to 1.0). Typical: 0.8-0.95.
	Tolerance float64

	// MaxDimension bounds the longer side of the working image. Larger frames
	// are scaled down before edge detection.
	MaxDimension int

	// EdgeThreshold is the Sobel response (0-255) above which a pixel is an
	// edge.
	EdgeThreshold uint8

	// EdgeBand is how far, in working pixels, a contour pixel may sit from
	// the corner polygon and still count toward confidence.
	EdgeBand float64

	// BlurSigma smooths the working image before edge detection. Zero
	// disables blurring.
	BlurSigma float64
}

// DefaultOptions returns the detector defaults.
func DefaultOptions() Options {
	return Options{
		MinArea:       0.01,
		Tolerance:     0.85,
		MaxDimension:  512,
		EdgeThreshold: 128,
		EdgeBand:      3,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinArea <= 0 {
		o.MinArea = d.MinArea
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = d.MaxDimension
	}
	if o.EdgeThreshold == 0 {
		o.EdgeThreshold = d.EdgeThreshold
	}
	if o.EdgeBand <= 0 {
		o.EdgeBand = d.EdgeBand
	}
	return o
}

// DetectRectangles finds rectangular shapes in a camera frame and returns
// their corners in normalized coordinates.
//
// Parameters:
//   - img: Source frame to analyze.
//   - opts: Detector tuning. Zero fields use DefaultOptions.
//
// Returns:
//   - *ObservationsResult: Observations sorted by area (largest first).
//   - error: Non-nil if the frame is empty.
//
// # Algorithm
//
//  1. Preprocessing: grayscale and scale down to MaxDimension, optionally blur
//  2. Edge Detection: Sobel gradient magnitude, thresholded to a binary map
//  3. Contour Finding: flood-fill groups connected edge pixels
//  4. Corner Extraction: the extreme points of each contour along the two
//     diagonals give top-left (min x+y), top-right (max x-y),
//     bottom-right (max x+y) and bottom-left (min x-y)
//  5. Rectangularity Check: the share of contour pixels within EdgeBand of
//     the corner polygon's edges
//  6. Filtering: Remove shapes below MinArea or with score < Tolerance
//
// # Limitations
//
//   - Rectangles turned close to 45 degrees in the image have ambiguous
//     extreme points and are reported with poor corners
//   - Nested rectangles are detected separately
//   - Perspective is not corrected; corners are reported as seen
func DetectRectangles(img image.Image, opts Options) (*ObservationsResult, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("empty frame: %dx%d", bounds.Dx(), bounds.Dy())
	}
	opts = opts.withDefaults()

	work := preprocess(img, opts)
	width := work.Bounds().Dx()
	height := work.Bounds().Dy()
	scaleX := float64(bounds.Dx()) / float64(width)
	scaleY := float64(bounds.Dy()) / float64(height)
	frameArea := float64(width * height)

	edges := detectEdges(work, opts.EdgeThreshold)
	contours := findContours(edges, width, height)

	observations := make([]Observation, 0)
	for _, contour := range contours {
		quad := extremeCorners(contour)
		poly := quad.polygon()

		area := polygonArea(poly) / frameArea
		if area < opts.MinArea {
			continue
		}

		confidence := edgeFit(contour, poly, opts.EdgeBand)
		if confidence < opts.Tolerance {
			continue
		}

		minX, minY, maxX, maxY := polygonBounds(poly)
		center := polygonCenter(poly)

		observations = append(observations, Observation{
			ID: uuid.New(),
			Corners: geometry.Quad{
				TopLeft:     normalize(quad.tl, width, height),
				TopRight:    normalize(quad.tr, width, height),
				BottomLeft:  normalize(quad.bl, width, height),
				BottomRight: normalize(quad.br, width, height),
			},
			Bounds: Bounds{
				X1: bounds.Min.X + int(float64(minX)*scaleX),
				Y1: bounds.Min.Y + int(float64(minY)*scaleY),
				X2: bounds.Min.X + int(float64(maxX)*scaleX),
				Y2: bounds.Min.Y + int(float64(maxY)*scaleY),
			},
			Area:       area,
			FillColor:  sampleColorHex(img, bounds.Min.X+int(center.X*scaleX), bounds.Min.Y+int(center.Y*scaleY)),
			Confidence: confidence,
		})
	}

	// Sort by area descending
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Area > observations[j].Area
	})

	return &ObservationsResult{
		Observations: observations,
		Count:        len(observations),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
	}, nil
}

// preprocess converts the frame to a grayscale working copy no larger than
// opts.MaxDimension on either side. The result's bounds start at (0, 0).
func preprocess(img image.Image, opts Options) image.Image {
	work := imaging.Grayscale(img)
	work = imaging.Fit(work, opts.MaxDimension, opts.MaxDimension, imaging.Linear)
	if opts.BlurSigma > 0 {
		work = imaging.Blur(work, opts.BlurSigma)
	}
	return work
}

// detectEdges marks pixels whose Sobel response reaches threshold.
//
// The Sobel filter clamps negative gradients to zero, so it only sees
// dark-to-bright transitions along each axis. Running it on the inverted
// image as well and keeping the lighter response catches edges of both
// polarities.
//
// Returns a 2D boolean array indexed [y][x] where true indicates an edge pixel.
// Frame borders are extended rather than wrapped, so the frame edge itself is
// never an edge.
func detectEdges(img image.Image, threshold uint8) [][]bool {
	magnitude := blend.Lighten(effect.Sobel(img), effect.Sobel(effect.Invert(img)))
	bin := segment.Threshold(magnitude, threshold)
	b := bin.Bounds()

	edges := make([][]bool, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		edges[y] = make([]bool, b.Dx())
		row := bin.Pix[y*bin.Stride : y*bin.Stride+b.Dx()]
		for x, v := range row {
			edges[y][x] = v != 0
		}
	}
	return edges
}

// findContours finds connected components (contours) in a binary edge image.
//
// Uses flood-fill to group connected edge pixels into contours.
// Connectivity is 8-connected (includes diagonals).
//
// Contours smaller than 10 pixels are discarded as noise.
// Returns a slice of contours, where each contour is a slice of Points.
func findContours(edges [][]bool, width, height int) [][]Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make([]Point, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) >= 10 { // Minimum contour size
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Marks visited pixels and appends them to the contour.
// Uses 8-connectivity (includes diagonal neighbors).
func floodFill(edges, visited [][]bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// normalize maps a working-image pixel to normalized frame coordinates,
// using pixel centers.
func normalize(p Point, width, height int) geometry.NormalizedPoint {
	return geometry.NormalizedPoint{
		X: (float64(p.X) + 0.5) / float64(width),
		Y: (float64(p.Y) + 0.5) / float64(height),
	}
}

// sampleColorHex returns the hex color (#rrggbb) of a pixel, or "" when the
// pixel is outside the image or fully transparent.
func sampleColorHex(img image.Image, x, y int) string {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return ""
	}
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return ""
	}
	return c.Hex()
}
