package render

import (
	"image/color"
	"math"
	"sync"

	"site-mapper/internal/annotation"
	"site-mapper/pkg/colorutil"
	"site-mapper/pkg/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	labelSize  = 11.0
	iconRadius = 12.0
)

var (
	fontOnce sync.Once
	fontData *opentype.Font
)

// face returns a Go Regular face of the given pixel size. Faces keep scratch
// buffers, so each renderer caches its own; the parsed font is shared.
// Sizes are rounded to a quarter pixel.
func (r *renderer) face(size float64) font.Face {
	size = math.Max(1, math.Round(size*4)/4)

	fontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			panic("render: embedded font: " + err.Error())
		}
		fontData = f
	})

	if f, ok := r.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(fontData, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		panic("render: font face: " + err.Error())
	}
	if r.faces == nil {
		r.faces = make(map[float64]font.Face)
	}
	r.faces[size] = f
	return f
}

// drawIcon draws the category glyph centered on the icon position with its
// label underneath.
func (r *renderer) drawIcon(f annotation.FeatureIcon, c color.RGBA, selected bool) {
	dc := r.dc
	p := f.Position

	dc.Push()
	dc.Translate(p.X, p.Y)
	switch annotation.GlyphFor(f.Category) {
	case annotation.GlyphDrain:
		dc.DrawCircle(0, 0, iconRadius)
		dc.SetColor(c)
		dc.Fill()
		dc.SetColor(colorutil.White)
		dc.SetLineWidth(r.width(1.5))
		for _, y := range []float64{-5, 0, 5} {
			dc.DrawLine(-7, y, 7, y)
		}
		dc.Stroke()
	case annotation.GlyphHazard:
		dc.MoveTo(0, -13)
		dc.LineTo(12, 10)
		dc.LineTo(-12, 10)
		dc.ClosePath()
		dc.SetColor(c)
		dc.Fill()
		dc.SetColor(colorutil.Black)
		dc.SetLineWidth(r.width(2))
		dc.DrawLine(0, -5, 0, 2)
		dc.Stroke()
		dc.DrawCircle(0, 6, 1.2)
		dc.Fill()
	case annotation.GlyphAccessibility:
		dc.DrawCircle(0, 0, iconRadius)
		dc.SetColor(c)
		dc.Fill()
		dc.SetColor(colorutil.White)
		dc.DrawCircle(-1, -7, 2)
		dc.Fill()
		dc.SetLineWidth(r.width(1.5))
		dc.DrawLine(-1, -4, -1, 3)
		dc.DrawLine(-5, -1, 3, -1)
		dc.Stroke()
		dc.DrawArc(0, 4, 5, 0, 1.5*math.Pi)
		dc.Stroke()
	case annotation.GlyphHydrant:
		dc.SetColor(c)
		dc.DrawRectangle(-8, -11, 16, 4)
		dc.DrawRectangle(-6, -7, 12, 17)
		dc.DrawRectangle(-10, -3, 20, 4)
		dc.Fill()
	case annotation.GlyphArrow:
		dc.SetColor(c)
		dc.SetLineWidth(r.width(3))
		dc.DrawLine(-12, 0, 5, 0)
		dc.Stroke()
		dc.MoveTo(12, 0)
		dc.LineTo(3, -7)
		dc.LineTo(3, 7)
		dc.ClosePath()
		dc.Fill()
	default:
		dc.DrawCircle(0, 0, 8)
		dc.SetColor(c)
		dc.FillPreserve()
		dc.SetColor(colorutil.White)
		dc.SetLineWidth(r.width(2))
		dc.Stroke()
	}

	if selected {
		dc.SetColor(colorutil.Selection)
		dc.SetLineWidth(r.width(2))
		dc.SetDash(r.width(4), r.width(3))
		dc.DrawCircle(0, 0, iconRadius+6)
		dc.Stroke()
		dc.SetDash()
	}
	dc.Pop()

	if f.Label != "" {
		r.drawLabel(f.Label, geometry.Pt(p.X, p.Y+iconRadius+4), 1, colorutil.Black)
	}
}
