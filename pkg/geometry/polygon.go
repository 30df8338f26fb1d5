package geometry

import (
	"fmt"
	"math"
)

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// DistanceToSegment returns the shortest distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Distance(a)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point2D{X: a.X + t*dx, Y: a.Y + t*dy})
}

// DistanceToPolyline returns the shortest distance from p to an open polyline.
// A single-point polyline degenerates to a point distance.
func DistanceToPolyline(p Point2D, points []Point2D) float64 {
	switch len(points) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(points[0])
	}

	best := math.Inf(1)
	for i := 0; i < len(points)-1; i++ {
		best = math.Min(best, DistanceToSegment(p, points[i], points[i+1]))
	}
	return best
}

// Flatten converts points into an interleaved [x1, y1, x2, y2, ...] slice.
func Flatten(points []Point2D) []float64 {
	out := make([]float64, 0, len(points)*2)
	for _, p := range points {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Unflatten is the inverse of Flatten. It fails on an odd number of values.
func Unflatten(coords []float64) ([]Point2D, error) {
	if len(coords)%2 != 0 {
		return nil, fmt.Errorf("odd coordinate count %d", len(coords))
	}
	points := make([]Point2D, len(coords)/2)
	for i := range points {
		points[i] = Point2D{X: coords[i*2], Y: coords[i*2+1]}
	}
	return points, nil
}

// ClonePoints returns a copy of the slice that shares no storage with it.
func ClonePoints(points []Point2D) []Point2D {
	if points == nil {
		return nil
	}
	out := make([]Point2D, len(points))
	copy(out, points)
	return out
}
