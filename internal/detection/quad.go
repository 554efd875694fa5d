package detection

import "math"

// pixelQuad holds the four corner pixels of a contour in working-image space.
type pixelQuad struct {
	tl, tr, br, bl Point
}

// vec2 is a point with fractional pixel coordinates.
type vec2 struct {
	X, Y float64
}

// extremeCorners picks the contour's extreme points along the image
// diagonals. For a rectangle that is not turned by close to 45 degrees these
// are its corners.
//
// Ties keep the first pixel found, so the result depends only on contour
// order, which is the deterministic scan order of findContours.
func extremeCorners(contour []Point) pixelQuad {
	q := pixelQuad{tl: contour[0], tr: contour[0], br: contour[0], bl: contour[0]}
	for _, p := range contour[1:] {
		if p.X+p.Y < q.tl.X+q.tl.Y {
			q.tl = p
		}
		if p.X+p.Y > q.br.X+q.br.Y {
			q.br = p
		}
		if p.X-p.Y > q.tr.X-q.tr.Y {
			q.tr = p
		}
		if p.X-p.Y < q.bl.X-q.bl.Y {
			q.bl = p
		}
	}
	return q
}

// polygon returns the corners in drawing order.
func (q pixelQuad) polygon() []Point {
	return []Point{q.tl, q.tr, q.br, q.bl}
}

// polygonArea is the shoelace area of a simple polygon.
func polygonArea(poly []Point) float64 {
	var sum int
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(float64(sum)) / 2
}

func polygonBounds(poly []Point) (minX, minY, maxX, maxY int) {
	minX, minY = poly[0].X, poly[0].Y
	maxX, maxY = minX, minY
	for _, p := range poly[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

func polygonCenter(poly []Point) vec2 {
	var c vec2
	for _, p := range poly {
		c.X += float64(p.X)
		c.Y += float64(p.Y)
	}
	n := float64(len(poly))
	return vec2{X: c.X / n, Y: c.Y / n}
}

// edgeFit returns the fraction of contour pixels within band of one of the
// polygon's edges. A rectangle outline scores close to 1; a circle whose
// extreme points form an inscribed square scores far lower.
func edgeFit(contour []Point, poly []Point, band float64) float64 {
	if len(contour) == 0 {
		return 0
	}
	near := 0
	for _, p := range contour {
		pt := vec2{X: float64(p.X), Y: float64(p.Y)}
		for i := range poly {
			a := poly[i]
			b := poly[(i+1)%len(poly)]
			if segmentDistance(pt, vec2{X: float64(a.X), Y: float64(a.Y)}, vec2{X: float64(b.X), Y: float64(b.Y)}) <= band {
				near++
				break
			}
		}
	}
	return float64(near) / float64(len(contour))
}

// segmentDistance is the Euclidean distance from p to the segment ab.
func segmentDistance(p, a, b vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
