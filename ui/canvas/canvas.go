// Package canvas provides the site map editor widget.
package canvas

import (
	"image"

	"site-mapper/internal/app"
	"site-mapper/internal/editor"
	"site-mapper/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// zoomStep is the zoom factor of one wheel notch.
const zoomStep = 1.1

// EditorCanvas displays a session's scene and feeds pointer and key input
// to its editor.
type EditorCanvas struct {
	widget.BaseWidget

	session *app.Session
	raster  *fynecanvas.Raster
	loading *widget.Label

	pressed bool

	// Callbacks
	onTextRequested func(at geometry.Point2D) // canvas coordinates
	onError         func(err error)
}

var (
	_ fyne.Focusable      = (*EditorCanvas)(nil)
	_ fyne.DoubleTappable = (*EditorCanvas)(nil)
	_ fyne.Scrollable     = (*EditorCanvas)(nil)
	_ fyne.Draggable      = (*EditorCanvas)(nil)
	_ desktop.Mouseable   = (*EditorCanvas)(nil)
	_ desktop.Hoverable   = (*EditorCanvas)(nil)
)

// NewEditorCanvas creates the widget and subscribes it to the session.
func NewEditorCanvas(s *app.Session) *EditorCanvas {
	ec := &EditorCanvas{
		session: s,
		loading: widget.NewLabel("Loading map…"),
	}
	opts := s.RenderOptions()
	ec.raster = fynecanvas.NewRaster(ec.draw)
	ec.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	ec.raster.SetMinSize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))
	ec.loading.Hide()

	redraw := func(interface{}) { ec.raster.Refresh() }
	for _, ev := range []editor.EventType{
		editor.EventRedraw,
		editor.EventSceneChanged,
		editor.EventSelectionChanged,
		editor.EventViewportChanged,
	} {
		s.Editor.On(ev, redraw)
	}
	s.Editor.On(editor.EventTextRequested, func(data interface{}) {
		if at, ok := data.(geometry.Point2D); ok && ec.onTextRequested != nil {
			ec.onTextRequested(at)
		}
	})
	s.On(app.EventLoadingChanged, func(data interface{}) {
		if on, _ := data.(bool); on {
			ec.loading.Show()
		} else {
			ec.loading.Hide()
		}
	})
	s.On(app.EventBackgroundLoaded, redraw)

	ec.ExtendBaseWidget(ec)
	return ec
}

// OnTextRequested sets the callback asking the user for text content.
// Answer with editor.PlaceText at the same point.
func (ec *EditorCanvas) OnTextRequested(callback func(at geometry.Point2D)) {
	ec.onTextRequested = callback
}

// OnError sets the callback for rejected editor input.
func (ec *EditorCanvas) OnError(callback func(err error)) {
	ec.onError = callback
}

func (ec *EditorCanvas) draw(w, h int) image.Image {
	return ec.session.Render()
}

// toScreen converts a widget position to editor screen pixels. The raster
// is stretched over the widget, so the scale is canvas size / widget size.
func (ec *EditorCanvas) toScreen(pos fyne.Position) geometry.Point2D {
	opts := ec.session.RenderOptions()
	size := ec.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return geometry.Pt(float64(pos.X), float64(pos.Y))
	}
	return geometry.Pt(
		float64(pos.X)*float64(opts.Width)/float64(size.Width),
		float64(pos.Y)*float64(opts.Height)/float64(size.Height),
	)
}

func (ec *EditorCanvas) dispatch(ev editor.Event) {
	if err := ec.session.Editor.Dispatch(ev); err != nil && ec.onError != nil {
		ec.onError(err)
	}
}

// MouseDown implements desktop.Mouseable.
func (ec *EditorCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(ec); c != nil {
		c.Focus(ec)
	}
	ec.pressed = true
	ec.dispatch(editor.PointerDown{At: ec.toScreen(ev.Position)})
}

// MouseUp implements desktop.Mouseable.
func (ec *EditorCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary || !ec.pressed {
		return
	}
	ec.pressed = false
	ec.dispatch(editor.PointerUp{At: ec.toScreen(ev.Position)})
}

// MouseIn implements desktop.Hoverable.
func (ec *EditorCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable. Hover moves drive the polygon
// rubber band.
func (ec *EditorCanvas) MouseMoved(ev *desktop.MouseEvent) {
	ec.dispatch(editor.PointerMove{At: ec.toScreen(ev.Position)})
}

// MouseOut implements desktop.Hoverable.
func (ec *EditorCanvas) MouseOut() {}

// Dragged implements fyne.Draggable; fyne delivers moves with the button
// held here instead of MouseMoved.
func (ec *EditorCanvas) Dragged(ev *fyne.DragEvent) {
	ec.dispatch(editor.PointerMove{At: ec.toScreen(ev.Position)})
}

// DragEnd implements fyne.Draggable. The release itself arrives as MouseUp.
func (ec *EditorCanvas) DragEnd() {}

// DoubleTapped implements fyne.DoubleTappable.
func (ec *EditorCanvas) DoubleTapped(ev *fyne.PointEvent) {
	ec.dispatch(editor.DoubleClick{At: ec.toScreen(ev.Position)})
}

// Scrolled zooms around the pointer.
func (ec *EditorCanvas) Scrolled(ev *fyne.ScrollEvent) {
	factor := zoomStep
	switch {
	case ev.Scrolled.DY < 0:
		factor = 1 / zoomStep
	case ev.Scrolled.DY == 0:
		return
	}
	ec.dispatch(editor.ZoomBy{Factor: factor, Anchor: ec.toScreen(ev.Position)})
}

// ZoomIn zooms one step around the canvas center.
func (ec *EditorCanvas) ZoomIn() {
	ec.dispatch(editor.ZoomBy{Factor: zoomStep, Anchor: ec.center()})
}

// ZoomOut zooms out one step around the canvas center.
func (ec *EditorCanvas) ZoomOut() {
	ec.dispatch(editor.ZoomBy{Factor: 1 / zoomStep, Anchor: ec.center()})
}

func (ec *EditorCanvas) center() geometry.Point2D {
	opts := ec.session.RenderOptions()
	return geometry.Pt(float64(opts.Width)/2, float64(opts.Height)/2)
}

// FocusGained implements fyne.Focusable.
func (ec *EditorCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (ec *EditorCanvas) FocusLost() {}

// TypedRune implements fyne.Focusable.
func (ec *EditorCanvas) TypedRune(rune) {}

// TypedKey maps Delete/Backspace and Escape onto editor keys. Modifier
// shortcuts are registered on the window canvas.
func (ec *EditorCanvas) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		ec.dispatch(editor.KeyPress{Key: editor.KeyDelete})
	case fyne.KeyEscape:
		ec.dispatch(editor.KeyPress{Key: editor.KeyEscape})
	}
}

// CreateRenderer implements fyne.Widget.
func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(ec.raster, container.NewCenter(ec.loading)))
}
