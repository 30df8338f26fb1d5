// Package viewport maps between screen space (pointer events) and canvas
// space (where annotations are stored).
//
// The affine transform returned by Transform is the only description of the
// view: the renderer draws through it and pointer conversion inverts it, so
// recorded coordinates always match what is on screen.
package viewport

import (
	"math"

	"site-mapper/pkg/geometry"
)

const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 1.1
)

// Viewport is the current zoom and pan of the editor.
type Viewport struct {
	Zoom float64
	Pan  geometry.Point2D // screen-space translation
}

// New returns the identity view.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Transform returns the canvas-to-screen transform: scale by Zoom, then
// translate by Pan.
func (v Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.Pan.X, v.Pan.Y).Compose(geometry.Scale(v.Zoom, v.Zoom))
}

// ToScreenSpace converts a canvas point to screen coordinates.
func (v Viewport) ToScreenSpace(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// ToCanvasSpace converts a screen point to canvas coordinates. A degenerate
// zoom leaves the point unchanged.
func (v Viewport) ToCanvasSpace(p geometry.Point2D) geometry.Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// WithZoom returns the view at zoom z (clamped), keeping the canvas point
// under the screen-space anchor fixed.
func (v Viewport) WithZoom(z float64, anchor geometry.Point2D) Viewport {
	c := v.ToCanvasSpace(anchor)
	z = ClampZoom(z)
	return Viewport{
		Zoom: z,
		Pan:  anchor.Sub(c.Scale(z)),
	}
}

// ZoomAt multiplies the zoom by factor around anchor.
func (v Viewport) ZoomAt(factor float64, anchor geometry.Point2D) Viewport {
	return v.WithZoom(v.Zoom*factor, anchor)
}

// PannedBy returns the view translated by a screen-space delta.
func (v Viewport) PannedBy(delta geometry.Point2D) Viewport {
	v.Pan = v.Pan.Add(delta)
	return v
}

// VisibleCenter returns the canvas point at the center of a screen of the
// given size.
func (v Viewport) VisibleCenter(width, height float64) geometry.Point2D {
	return v.ToCanvasSpace(geometry.Pt(width/2, height/2))
}
