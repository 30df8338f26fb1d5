package editor

import (
	"image"

	"site-mapper/internal/annotation"
	"site-mapper/pkg/geometry"
)

// Event is an input to the editor reducer. Pointer positions are in screen
// space; the editor converts them through the viewport.
type Event interface {
	event()
}

type (
	PointerDown struct{ At geometry.Point2D }
	PointerMove struct{ At geometry.Point2D }
	PointerUp   struct{ At geometry.Point2D }
	DoubleClick struct{ At geometry.Point2D }

	// KeyPress carries a key name ("z", "Delete", "Escape") and modifier state.
	// Meta is the Cmd key on macOS.
	KeyPress struct {
		Key  string
		Ctrl bool
		Meta bool
	}

	// SelectTool switches the active tool. Category is required for
	// ToolPolygon and names an area category.
	SelectTool struct {
		Tool     Tool
		Category string
	}

	// PlaceIcon drops a feature icon of the given category at the center of
	// the visible area.
	PlaceIcon struct{ Category string }

	// PlaceText answers an EventTextRequested notification. At is in canvas
	// space, as delivered with the request.
	PlaceText struct {
		At      geometry.Point2D
		Content string
	}

	Undo           struct{}
	Redo           struct{}
	DeleteSelected struct{}
	ClearAll       struct{}

	// ZoomBy multiplies the zoom by Factor, keeping the screen-space Anchor fixed.
	ZoomBy struct {
		Factor float64
		Anchor geometry.Point2D
	}

	ResetView  struct{}
	ToggleGrid struct{}

	// SetColor sets the stroke color ("#RRGGBB") of new freehand annotations.
	SetColor struct{ Color string }

	// SetBackground replaces the background image; nil clears it.
	SetBackground struct{ Image image.Image }

	// Select sets the selection; an empty ID clears it.
	Select struct{ ID string }

	// LoadScene replaces the scene and restarts history from it.
	LoadScene struct{ Annotations annotation.List }
)

func (PointerDown) event()    {}
func (PointerMove) event()    {}
func (PointerUp) event()      {}
func (DoubleClick) event()    {}
func (KeyPress) event()       {}
func (SelectTool) event()     {}
func (PlaceIcon) event()      {}
func (PlaceText) event()      {}
func (Undo) event()           {}
func (Redo) event()           {}
func (DeleteSelected) event() {}
func (ClearAll) event()       {}
func (ZoomBy) event()         {}
func (ResetView) event()      {}
func (ToggleGrid) event()     {}
func (SetColor) event()       {}
func (SetBackground) event()  {}
func (Select) event()         {}
func (LoadScene) event()      {}

// Key names understood by the keyboard handler.
const (
	KeyDelete = "Delete"
	KeyEscape = "Escape"
)

// EventType identifies editor notifications.
type EventType int

const (
	// EventSceneChanged fires after the committed annotation list changed.
	// Data is the annotation count (int).
	EventSceneChanged EventType = iota
	// EventSelectionChanged carries the selected id (string, "" for none).
	EventSelectionChanged
	// EventToolChanged carries the new Tool.
	EventToolChanged
	// EventViewportChanged carries the new viewport.Viewport.
	EventViewportChanged
	// EventRedraw asks the host to repaint after a transient-only change.
	EventRedraw
	// EventTextRequested asks the host to prompt for text; data is the
	// canvas-space geometry.Point2D to pass back in PlaceText.
	EventTextRequested
	// EventSaveRequested fires on Ctrl/Cmd+S. Data is nil.
	EventSaveRequested
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type notification struct {
	event EventType
	data  interface{}
}
