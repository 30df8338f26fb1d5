// Package annotation defines the drawable objects of a site map: lines,
// circles, rectangles, area polygons, feature icons and text labels.
//
// Each kind is its own struct carrying exactly the fields it needs; the
// Annotation interface is the closed sum over them. Values are treated as
// immutable: operations that change an annotation return a new value.
package annotation

import (
	"math"

	"site-mapper/pkg/geometry"

	"github.com/google/uuid"
)

// Kind identifies the variant of an annotation. The string values are the
// "type" field of the persisted payload.
type Kind string

const (
	KindLine        Kind = "line"
	KindCircle      Kind = "circle"
	KindRectangle   Kind = "rectangle"
	KindPolygon     Kind = "polygon"
	KindFeatureIcon Kind = "feature-icon"
	KindText        Kind = "text"
)

// MinPolygonPoints is the number of vertices a polygon needs to be closeable.
const MinPolygonPoints = 3

// Annotation is the common interface of every drawable object.
type Annotation interface {
	// AnnotationID returns the identifier assigned at creation.
	AnnotationID() string

	// Kind returns the variant tag.
	Kind() Kind

	// StrokeColor returns the color string ("#RRGGBB") used to draw the object.
	StrokeColor() string

	// Bounds returns the canvas-space bounding box.
	Bounds() geometry.Rect

	// HitTest reports whether p (canvas space) is within tol of the object.
	HitTest(p geometry.Point2D, tol float64) bool

	// Clone returns a deep copy sharing no slices with the receiver.
	Clone() Annotation
}

// Movable is implemented by annotations that can be dragged after creation.
type Movable interface {
	Annotation
	MovedBy(delta geometry.Point2D) Annotation
}

// NewID returns a fresh annotation identifier.
func NewID() string {
	return uuid.NewString()
}

// Line is a freehand pen stroke.
type Line struct {
	ID     string
	Color  string
	Points []geometry.Point2D
}

func (l Line) AnnotationID() string  { return l.ID }
func (l Line) Kind() Kind            { return KindLine }
func (l Line) StrokeColor() string   { return l.Color }
func (l Line) Bounds() geometry.Rect { return geometry.BoundingBox(l.Points) }

func (l Line) HitTest(p geometry.Point2D, tol float64) bool {
	return geometry.DistanceToPolyline(p, l.Points) <= tol
}

func (l Line) Clone() Annotation {
	l.Points = geometry.ClonePoints(l.Points)
	return l
}

// WithPoint returns the line extended by p.
func (l Line) WithPoint(p geometry.Point2D) Line {
	pts := make([]geometry.Point2D, len(l.Points), len(l.Points)+1)
	copy(pts, l.Points)
	l.Points = append(pts, p)
	return l
}

// Circle is defined by its center and radius.
type Circle struct {
	ID     string
	Color  string
	Center geometry.Point2D
	Radius float64
}

func (c Circle) AnnotationID() string { return c.ID }
func (c Circle) Kind() Kind           { return KindCircle }
func (c Circle) StrokeColor() string  { return c.Color }
func (c Circle) Clone() Annotation    { return c }

func (c Circle) Bounds() geometry.Rect {
	return geometry.NewRect(c.Center.X-c.Radius, c.Center.Y-c.Radius, 2*c.Radius, 2*c.Radius)
}

// HitTest accepts points inside the circle as well as near its outline.
func (c Circle) HitTest(p geometry.Point2D, tol float64) bool {
	return p.Distance(c.Center) <= c.Radius+tol
}

func (c Circle) MovedBy(delta geometry.Point2D) Annotation {
	c.Center = c.Center.Add(delta)
	return c
}

// Rectangle keeps the signed size produced by the drag that created it.
type Rectangle struct {
	ID     string
	Color  string
	Origin geometry.Point2D
	Width  float64
	Height float64
}

func (r Rectangle) AnnotationID() string { return r.ID }
func (r Rectangle) Kind() Kind           { return KindRectangle }
func (r Rectangle) StrokeColor() string  { return r.Color }
func (r Rectangle) Clone() Annotation    { return r }

// Rect returns the signed geometry of the rectangle.
func (r Rectangle) Rect() geometry.Rect {
	return geometry.NewRect(r.Origin.X, r.Origin.Y, r.Width, r.Height)
}

func (r Rectangle) Bounds() geometry.Rect { return r.Rect().Normalize() }

func (r Rectangle) HitTest(p geometry.Point2D, tol float64) bool {
	return r.Rect().Inset(tol).Contains(p)
}

func (r Rectangle) MovedBy(delta geometry.Point2D) Annotation {
	r.Origin = r.Origin.Add(delta)
	return r
}

// Polygon is a closed, filled area tagged with an area category.
type Polygon struct {
	ID       string
	Category string
	Label    string
	Color    string
	Points   []geometry.Point2D
}

func (g Polygon) AnnotationID() string  { return g.ID }
func (g Polygon) Kind() Kind            { return KindPolygon }
func (g Polygon) StrokeColor() string   { return g.Color }
func (g Polygon) Bounds() geometry.Rect { return geometry.BoundingBox(g.Points) }

func (g Polygon) HitTest(p geometry.Point2D, tol float64) bool {
	if geometry.PointInPolygon(p, g.Points) {
		return true
	}
	if len(g.Points) == 0 {
		return false
	}
	closed := append(geometry.ClonePoints(g.Points), g.Points[0])
	return geometry.DistanceToPolyline(p, closed) <= tol
}

func (g Polygon) Clone() Annotation {
	g.Points = geometry.ClonePoints(g.Points)
	return g
}

// Valid reports whether the polygon has enough vertices to be closed.
func (g Polygon) Valid() bool {
	return len(g.Points) >= MinPolygonPoints
}

// iconHitRadius is the canvas-space radius of a feature icon's glyph.
const iconHitRadius = 15

// FeatureIcon is a category-typed point marker.
type FeatureIcon struct {
	ID       string
	Category string
	Label    string
	Color    string
	Position geometry.Point2D
}

func (f FeatureIcon) AnnotationID() string { return f.ID }
func (f FeatureIcon) Kind() Kind           { return KindFeatureIcon }
func (f FeatureIcon) StrokeColor() string  { return f.Color }
func (f FeatureIcon) Clone() Annotation    { return f }

func (f FeatureIcon) Bounds() geometry.Rect {
	return geometry.NewRect(f.Position.X-iconHitRadius, f.Position.Y-iconHitRadius, 2*iconHitRadius, 2*iconHitRadius)
}

func (f FeatureIcon) HitTest(p geometry.Point2D, tol float64) bool {
	return p.Distance(f.Position) <= iconHitRadius+tol
}

func (f FeatureIcon) MovedBy(delta geometry.Point2D) Annotation {
	f.Position = f.Position.Add(delta)
	return f
}

// DefaultFontSize is the text size used when none was recorded.
const DefaultFontSize = 16

// Text is a free-standing label. Position is the baseline start.
type Text struct {
	ID       string
	Color    string
	Position geometry.Point2D
	Content  string
	FontSize float64
}

func (t Text) AnnotationID() string { return t.ID }
func (t Text) Kind() Kind           { return KindText }
func (t Text) StrokeColor() string  { return t.Color }
func (t Text) Clone() Annotation    { return t }

// Bounds approximates the text extent; glyphs average 0.6em in width.
func (t Text) Bounds() geometry.Rect {
	size := t.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	width := math.Max(size, float64(len([]rune(t.Content)))*size*0.6)
	return geometry.NewRect(t.Position.X, t.Position.Y-size, width, size)
}

func (t Text) HitTest(p geometry.Point2D, tol float64) bool {
	return t.Bounds().Inset(tol).Contains(p)
}

func (t Text) MovedBy(delta geometry.Point2D) Annotation {
	t.Position = t.Position.Add(delta)
	return t
}
