// Package render rasterizes a site map scene: background image, optional
// grid, every annotation and the in-progress polygon preview.
//
// Render is a pure function of its Frame; it never reads editor state.
package render

import (
	"image"
	"image/color"

	"site-mapper/internal/annotation"
	"site-mapper/internal/viewport"
	"site-mapper/pkg/colorutil"
	"site-mapper/pkg/geometry"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Default canvas geometry.
const (
	CanvasWidth  = 1000
	CanvasHeight = 700
	GridSpacing  = 50
)

// Stroke widths in canvas units.
const (
	strokeWidth         = 2.0
	selectedStrokeWidth = 4.0
	polygonFillAlpha    = 0.3
)

// PolygonPreview is the transient state of a polygon being drawn.
type PolygonPreview struct {
	Points []geometry.Point2D
	Cursor *geometry.Point2D // rubber-band end, nil when the pointer is away
	Color  string
}

// Frame is everything needed to draw one image of the scene.
type Frame struct {
	Background  image.Image
	Grid        bool
	Annotations annotation.List
	SelectedID  string
	Preview     *PolygonPreview
	Viewport    viewport.Viewport
}

// Options configures the output surface.
type Options struct {
	Width       int
	Height      int
	GridSpacing float64
	Clear       color.Color
}

// DefaultOptions returns the standard 1000x700 canvas.
func DefaultOptions() Options {
	return Options{
		Width:       CanvasWidth,
		Height:      CanvasHeight,
		GridSpacing: GridSpacing,
		Clear:       colorutil.White,
	}
}

// Render draws the frame onto a new image.
func Render(f Frame, opts Options) *image.RGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = CanvasWidth, CanvasHeight
	}
	if opts.GridSpacing <= 0 {
		opts.GridSpacing = GridSpacing
	}
	if opts.Clear == nil {
		opts.Clear = colorutil.White
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(opts.Clear)
	dc.Clear()

	r := &renderer{dc: dc, zoom: f.Viewport.Zoom, opts: opts}
	if r.zoom <= 0 {
		r.zoom = 1
	}

	applyTransform(dc, f.Viewport.Transform())

	if f.Background != nil {
		r.drawBackground(f.Background)
	}
	if f.Grid {
		r.drawGrid()
	}
	for _, a := range f.Annotations {
		r.drawAnnotation(a, a.AnnotationID() == f.SelectedID && f.SelectedID != "")
	}
	if f.Preview != nil {
		r.drawPreview(*f.Preview)
	}

	return dc.Image().(*image.RGBA)
}

// applyTransform loads the viewport transform into the context. Viewport
// transforms are scale-and-translate only, so this is exact.
func applyTransform(dc *gg.Context, t geometry.AffineTransform) {
	dc.Identity()
	dc.Translate(t.TX, t.TY)
	dc.Scale(t.A, t.D)
}

type renderer struct {
	dc    *gg.Context
	zoom  float64
	opts  Options
	faces map[float64]font.Face
}

// width converts a canvas-unit stroke width to device pixels, mirroring how a
// scaled canvas context widens strokes.
func (r *renderer) width(w float64) float64 {
	return w * r.zoom
}

func (r *renderer) drawBackground(img image.Image) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	r.dc.Push()
	r.dc.Scale(float64(r.opts.Width)/float64(b.Dx()), float64(r.opts.Height)/float64(b.Dy()))
	r.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	r.dc.Pop()
}

func (r *renderer) drawGrid() {
	dc := r.dc
	w, h := float64(r.opts.Width), float64(r.opts.Height)

	dc.SetColor(colorutil.WithAlpha(colorutil.GridLine, 0.6))
	dc.SetLineWidth(r.width(0.5))
	for x := 0.0; x <= w; x += r.opts.GridSpacing {
		dc.DrawLine(x, 0, x, h)
	}
	for y := 0.0; y <= h; y += r.opts.GridSpacing {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()
}

func (r *renderer) drawAnnotation(a annotation.Annotation, selected bool) {
	lw := strokeWidth
	if selected {
		lw = selectedStrokeWidth
	}
	c := colorutil.MustHex(a.StrokeColor())

	r.dc.SetLineWidth(r.width(lw))
	r.dc.SetLineCap(gg.LineCapRound)
	r.dc.SetLineJoin(gg.LineJoinRound)
	r.dc.SetColor(c)

	switch v := a.(type) {
	case annotation.Line:
		r.drawLine(v, lw)
	case annotation.Circle:
		r.dc.DrawCircle(v.Center.X, v.Center.Y, v.Radius)
		r.dc.Stroke()
	case annotation.Rectangle:
		n := v.Bounds()
		r.dc.DrawRectangle(n.X, n.Y, n.Width, n.Height)
		r.dc.Stroke()
	case annotation.Polygon:
		r.drawPolygon(v, c)
	case annotation.FeatureIcon:
		r.drawIcon(v, c, selected)
	case annotation.Text:
		r.drawText(v, c)
	}
}

// drawLine strokes a smoothed open polyline: quadratic segments whose control
// points are the recorded points and whose ends are the midpoints between them.
func (r *renderer) drawLine(l annotation.Line, lw float64) {
	dc := r.dc
	pts := l.Points

	switch len(pts) {
	case 0:
		return
	case 1:
		dc.DrawCircle(pts[0].X, pts[0].Y, lw/2)
		dc.Fill()
		return
	}

	dc.MoveTo(pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		mid := pts[i].Mid(pts[i+1])
		dc.QuadraticTo(pts[i].X, pts[i].Y, mid.X, mid.Y)
	}
	last := pts[len(pts)-1]
	dc.LineTo(last.X, last.Y)
	dc.Stroke()
}

func (r *renderer) drawPolygon(g annotation.Polygon, c color.RGBA) {
	if len(g.Points) == 0 {
		return
	}
	dc := r.dc

	dc.MoveTo(g.Points[0].X, g.Points[0].Y)
	for _, p := range g.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.SetColor(colorutil.WithAlpha(c, polygonFillAlpha))
	dc.FillPreserve()
	dc.SetColor(c)
	dc.Stroke()

	if g.Label != "" && g.Valid() {
		center := geometry.Centroid(g.Points)
		r.drawLabel(g.Label, center, 0.5, colorutil.Darken(c, 0.4))
	}
}

func (r *renderer) drawText(t annotation.Text, c color.RGBA) {
	size := t.FontSize
	if size <= 0 {
		size = annotation.DefaultFontSize
	}
	r.dc.SetFontFace(r.face(size * r.zoom))
	r.dc.SetColor(c)
	r.dc.DrawString(t.Content, t.Position.X, t.Position.Y)
}

// drawLabel draws small text centered horizontally on at. With ay = 1 the top
// of the text sits on at.Y; 0.5 centers it.
func (r *renderer) drawLabel(s string, at geometry.Point2D, ay float64, c color.Color) {
	r.dc.SetFontFace(r.face(labelSize * r.zoom))
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(s, at.X, at.Y, 0.5, ay)
}

func (r *renderer) drawPreview(p PolygonPreview) {
	if len(p.Points) == 0 {
		return
	}
	dc := r.dc
	c := colorutil.MustHex(p.Color)

	dc.SetColor(c)
	dc.SetLineWidth(r.width(strokeWidth))
	dc.MoveTo(p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		dc.LineTo(pt.X, pt.Y)
	}
	dc.Stroke()

	if p.Cursor != nil {
		last := p.Points[len(p.Points)-1]
		dc.SetDash(r.width(5), r.width(5))
		dc.DrawLine(last.X, last.Y, p.Cursor.X, p.Cursor.Y)
		dc.Stroke()
		dc.SetDash()
	}

	for _, pt := range p.Points {
		dc.DrawCircle(pt.X, pt.Y, 4)
		dc.SetColor(c)
		dc.FillPreserve()
		dc.SetColor(colorutil.White)
		dc.SetLineWidth(r.width(1))
		dc.Stroke()
	}
}
