// Package geometry has the plane types shared by the viewport, annotations
// and renderer. Canvas and screen space both use Point2D.
package geometry

import (
	"math"
)

// Point2D is a point (or offset) in canvas or screen units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point2D) Add(d Point2D) Point2D {
	return Pt(p.X+d.X, p.Y+d.Y)
}

func (p Point2D) Sub(q Point2D) Point2D {
	return Pt(p.X-q.X, p.Y-q.Y)
}

func (p Point2D) Scale(k float64) Point2D {
	return Pt(p.X*k, p.Y*k)
}

// Mid is the midpoint of p and q.
func (p Point2D) Mid(q Point2D) Point2D {
	return Pt((p.X+q.X)/2, (p.Y+q.Y)/2)
}

// ApproxEqual reports whether p and q lie within eps on both axes.
func (p Point2D) ApproxEqual(q Point2D, eps float64) bool {
	return math.Abs(p.X-q.X) < eps && math.Abs(p.Y-q.Y) < eps
}

// Rect is an origin plus a size. A rectangle dragged up or to the left
// has a negative Width or Height until it is normalized.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Normalize flips negative extents so Width and Height are >= 0.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X, r.Width = r.X+r.Width, -r.Width
	}
	if r.Height < 0 {
		r.Y, r.Height = r.Y+r.Height, -r.Height
	}
	return r
}

// Contains is inclusive of the edges.
func (r Rect) Contains(p Point2D) bool {
	n := r.Normalize()
	return p.X >= n.X && p.X <= n.X+n.Width &&
		p.Y >= n.Y && p.Y <= n.Y+n.Height
}

// Inset moves every edge outward by d; a negative d shrinks the rect.
func (r Rect) Inset(d float64) Rect {
	n := r.Normalize()
	return NewRect(n.X-d, n.Y-d, n.Width+2*d, n.Height+2*d)
}

// AffineTransform maps p to (A*x + B*y + TX, C*x + D*y + TY).
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

func (t AffineTransform) Apply(p Point2D) Point2D {
	return Pt(t.A*p.X+t.B*p.Y+t.TX, t.C*p.X+t.D*p.Y+t.TY)
}

// Compose returns t∘u: u is applied first, then t.
func (t AffineTransform) Compose(u AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*u.A + t.B*u.C,
		B:  t.A*u.B + t.B*u.D,
		TX: t.A*u.TX + t.B*u.TY + t.TX,
		C:  t.C*u.A + t.D*u.C,
		D:  t.C*u.B + t.D*u.D,
		TY: t.C*u.TX + t.D*u.TY + t.TY,
	}
}

// Inverse fails for a singular transform (zero zoom).
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}
	k := 1 / det
	return AffineTransform{
		A: t.D * k, B: -t.B * k, TX: (t.B*t.TY - t.D*t.TX) * k,
		C: -t.C * k, D: t.A * k, TY: (t.C*t.TX - t.A*t.TY) * k,
	}, true
}

// BoundingBox is the zero Rect for no points.
func BoundingBox(pts []Point2D) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
	}
	return NewRect(lo.X, lo.Y, hi.X-lo.X, hi.Y-lo.Y)
}

// Centroid is the vertex average, which is where polygon labels go.
func Centroid(pts []Point2D) Point2D {
	if len(pts) == 0 {
		return Point2D{}
	}
	var sum Point2D
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}
