package editor

import (
	"testing"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/viewport"
	"site-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(opts ...Option) *Editor {
	return New(append([]Option{WithMoveInterval(0)}, opts...)...)
}

func dispatch(t *testing.T, e *Editor, events ...Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, e.Dispatch(ev))
	}
}

func click(at geometry.Point2D) []Event {
	return []Event{PointerDown{At: at}, PointerUp{At: at}}
}

func TestScenario_DrawAndUndoRectangle(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e,
		SelectTool{Tool: ToolRectangle},
		PointerDown{At: geometry.Pt(100, 100)},
		PointerMove{At: geometry.Pt(300, 250)},
		PointerUp{At: geometry.Pt(300, 250)},
	)

	list := e.Annotations()
	require.Len(t, list, 1)
	rect := list[0].(annotation.Rectangle)
	assert.Equal(t, geometry.Pt(100, 100), rect.Origin)
	assert.Equal(t, 200.0, rect.Width)
	assert.Equal(t, 150.0, rect.Height)

	tool, _ := e.Tool()
	assert.Equal(t, ToolRectangle, tool, "drawing tools stay active")

	dispatch(t, e, Undo{})
	assert.Empty(t, e.Annotations())
}

func TestScenario_PolygonArea(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e, SelectTool{Tool: ToolPolygon, Category: "no_parking"})
	for _, p := range []geometry.Point2D{geometry.Pt(10, 10), geometry.Pt(50, 10), geometry.Pt(50, 50)} {
		dispatch(t, e, click(p)...)
	}
	dispatch(t, e, DoubleClick{At: geometry.Pt(10, 50)})

	list := e.Annotations()
	require.Len(t, list, 1)
	poly := list[0].(annotation.Polygon)
	assert.Equal(t, "no_parking", poly.Category)
	assert.Equal(t, "No Parking Zone", poly.Label)
	assert.Equal(t, "#EF4444", poly.Color)
	assert.Len(t, geometry.Flatten(poly.Points), 8)

	tool, _ := e.Tool()
	assert.Equal(t, ToolSelect, tool)
	assert.Empty(t, e.PolygonPoints())
}

func TestPolygon_DoubleClickPressesAreNotDuplicated(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e, SelectTool{Tool: ToolPolygon, Category: "parking"})
	for _, p := range []geometry.Point2D{geometry.Pt(0, 0), geometry.Pt(100, 0), geometry.Pt(100, 100)} {
		dispatch(t, e, click(p)...)
	}
	// A double-click delivers two presses before the double-click itself.
	last := geometry.Pt(0, 100)
	dispatch(t, e, click(last)...)
	dispatch(t, e, click(last)...)
	dispatch(t, e, DoubleClick{At: last})

	list := e.Annotations()
	require.Len(t, list, 1)
	assert.Len(t, list[0].(annotation.Polygon).Points, 4)
}

func TestPolygon_TooFewPointsIsNoOp(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e, SelectTool{Tool: ToolPolygon, Category: "fire_lane"})
	dispatch(t, e, click(geometry.Pt(10, 10))...)
	dispatch(t, e, DoubleClick{At: geometry.Pt(40, 40)})

	assert.Empty(t, e.Annotations())
	assert.False(t, e.CanUndo())

	tool, category := e.Tool()
	assert.Equal(t, ToolPolygon, tool, "drawing continues")
	assert.Equal(t, "fire_lane", category)
	assert.Equal(t, []geometry.Point2D{geometry.Pt(10, 10)}, e.PolygonPoints())

	// The same polygon can still be finished.
	dispatch(t, e, click(geometry.Pt(40, 10))...)
	dispatch(t, e, DoubleClick{At: geometry.Pt(40, 40)})
	require.Len(t, e.Annotations(), 1)
	assert.Len(t, e.Annotations()[0].(annotation.Polygon).Points, 3)
}

func TestPolygon_RubberBandPreview(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e,
		SelectTool{Tool: ToolPolygon, Category: "parking"},
		PointerDown{At: geometry.Pt(10, 10)},
		PointerUp{At: geometry.Pt(10, 10)},
		PointerMove{At: geometry.Pt(80, 90)},
	)

	f := e.Frame()
	require.NotNil(t, f.Preview)
	require.NotNil(t, f.Preview.Cursor)
	assert.Equal(t, geometry.Pt(80, 90), *f.Preview.Cursor)
	assert.Equal(t, "#3B82F6", f.Preview.Color)
	assert.Empty(t, f.Annotations)
}

func TestSelectTool_UnknownAreaCategory(t *testing.T) {
	e := newTestEditor()

	err := e.Dispatch(SelectTool{Tool: ToolPolygon, Category: "moat"})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	tool, _ := e.Tool()
	assert.Equal(t, ToolSelect, tool)
}

func TestScenario_DeleteSelected(t *testing.T) {
	circle := annotation.Circle{ID: "c1", Color: "#000000", Center: geometry.Pt(50, 50), Radius: 10}
	e := newTestEditor(WithAnnotations(annotation.List{circle}))

	dispatch(t, e, Select{ID: "c1"}, KeyPress{Key: KeyDelete})

	assert.False(t, e.Annotations().Contains("c1"))
	assert.Empty(t, e.Annotations())
	assert.Equal(t, "", e.Selected())

	dispatch(t, e, Undo{})
	assert.True(t, e.Annotations().Contains("c1"))
}

func TestSelect_Unknown(t *testing.T) {
	e := newTestEditor()
	assert.ErrorIs(t, e.Dispatch(Select{ID: "nope"}), annotation.ErrNotFound)
}

func TestKeyboardShortcuts(t *testing.T) {
	e := newTestEditor()
	saves := 0
	e.On(EventSaveRequested, func(interface{}) { saves++ })

	dispatch(t, e, PlaceIcon{Category: "hydrant"}, PlaceIcon{Category: "drain"})
	require.Len(t, e.Annotations(), 2)

	dispatch(t, e, KeyPress{Key: "z", Ctrl: true})
	assert.Len(t, e.Annotations(), 1)
	dispatch(t, e, KeyPress{Key: "Z", Meta: true})
	assert.Empty(t, e.Annotations())
	dispatch(t, e, KeyPress{Key: "y", Meta: true})
	assert.Len(t, e.Annotations(), 1)
	dispatch(t, e, KeyPress{Key: "y", Ctrl: true})
	assert.Len(t, e.Annotations(), 2)

	dispatch(t, e, KeyPress{Key: "s", Ctrl: true}, KeyPress{Key: "s", Meta: true})
	assert.Equal(t, 2, saves)

	// Unmodified letters do nothing.
	dispatch(t, e, KeyPress{Key: "z"})
	assert.Len(t, e.Annotations(), 2)
}

func TestEscape_CancelsPolygon(t *testing.T) {
	e := newTestEditor()
	var tools []Tool
	e.On(EventToolChanged, func(data interface{}) { tools = append(tools, data.(Tool)) })

	dispatch(t, e, SelectTool{Tool: ToolPolygon, Category: "parking"})
	dispatch(t, e, click(geometry.Pt(1, 1))...)
	dispatch(t, e, click(geometry.Pt(20, 1))...)
	dispatch(t, e, KeyPress{Key: KeyEscape})

	tool, category := e.Tool()
	assert.Equal(t, ToolSelect, tool)
	assert.Empty(t, category)
	assert.Empty(t, e.PolygonPoints())
	assert.Nil(t, e.Frame().Preview)
	assert.Equal(t, []Tool{ToolPolygon, ToolSelect}, tools)
}

func TestPen_ThrottlesMovesButNotUp(t *testing.T) {
	now := time.Unix(1000, 0)
	e := New(WithClock(func() time.Time { return now }), WithMoveInterval(16*time.Millisecond))

	dispatch(t, e,
		SelectTool{Tool: ToolPen},
		PointerDown{At: geometry.Pt(0, 0)},
		PointerMove{At: geometry.Pt(1, 0)},
		PointerMove{At: geometry.Pt(2, 0)}, // dropped
	)
	now = now.Add(5 * time.Millisecond)
	dispatch(t, e, PointerMove{At: geometry.Pt(3, 0)}) // dropped
	now = now.Add(20 * time.Millisecond)
	dispatch(t, e,
		PointerMove{At: geometry.Pt(4, 0)},
		PointerUp{At: geometry.Pt(5, 0)},
	)

	list := e.Annotations()
	require.Len(t, list, 1)
	assert.Equal(t, []geometry.Point2D{
		geometry.Pt(0, 0), geometry.Pt(1, 0), geometry.Pt(4, 0), geometry.Pt(5, 0),
	}, list[0].(annotation.Line).Points)
}

func TestCircle_RadiusFollowsPointer(t *testing.T) {
	e := newTestEditor(WithColor("#00FF00"))

	dispatch(t, e,
		SelectTool{Tool: ToolCircle},
		PointerDown{At: geometry.Pt(100, 100)},
		PointerMove{At: geometry.Pt(130, 140)},
	)
	assert.Empty(t, e.Annotations(), "draft is transient")
	require.Len(t, e.Frame().Annotations, 1)

	dispatch(t, e, PointerUp{At: geometry.Pt(100, 110)})
	c := e.Annotations()[0].(annotation.Circle)
	assert.Equal(t, 10.0, c.Radius)
	assert.Equal(t, "#00FF00", c.Color)
}

func TestDrag_CommitsOnceOnRelease(t *testing.T) {
	circle := annotation.Circle{ID: "c", Color: "#000000", Center: geometry.Pt(100, 100), Radius: 10}
	e := newTestEditor(WithAnnotations(annotation.List{circle}))
	changes := 0
	e.On(EventSceneChanged, func(interface{}) { changes++ })

	dispatch(t, e,
		PointerDown{At: geometry.Pt(100, 100)},
		PointerMove{At: geometry.Pt(120, 100)},
		PointerMove{At: geometry.Pt(150, 120)},
	)
	assert.Equal(t, "c", e.Selected())
	assert.Equal(t, geometry.Pt(100, 100), e.Annotations()[0].(annotation.Circle).Center)
	assert.Equal(t, geometry.Pt(150, 120), e.Frame().Annotations[0].(annotation.Circle).Center)

	dispatch(t, e, PointerUp{At: geometry.Pt(160, 120)})
	assert.Equal(t, geometry.Pt(160, 120), e.Annotations()[0].(annotation.Circle).Center)
	assert.Equal(t, 1, changes)

	dispatch(t, e, Undo{})
	assert.Equal(t, geometry.Pt(100, 100), e.Annotations()[0].(annotation.Circle).Center)
	assert.False(t, e.CanUndo())
}

func TestSelect_ClickWithoutMoveDoesNotSnapshot(t *testing.T) {
	e := newTestEditor(WithAnnotations(annotation.List{
		annotation.Rectangle{ID: "r", Origin: geometry.Pt(10, 10), Width: 50, Height: 50},
	}))

	dispatch(t, e, click(geometry.Pt(30, 30))...)

	assert.Equal(t, "r", e.Selected())
	assert.False(t, e.CanUndo())
}

func TestSelect_EmptyCanvasPans(t *testing.T) {
	e := newTestEditor(WithAnnotations(annotation.List{
		annotation.Circle{ID: "c", Center: geometry.Pt(10, 10), Radius: 5},
	}))
	dispatch(t, e, Select{ID: "c"})

	dispatch(t, e,
		PointerDown{At: geometry.Pt(500, 500)},
		PointerMove{At: geometry.Pt(510, 505)},
		PointerUp{At: geometry.Pt(520, 510)},
	)

	assert.Equal(t, "", e.Selected())
	assert.Equal(t, geometry.Pt(20, 10), e.Viewport().Pan)
	assert.False(t, e.CanUndo())
}

func TestDrawingUnderZoom_RecordsCanvasCoordinates(t *testing.T) {
	e := newTestEditor()

	dispatch(t, e,
		ZoomBy{Factor: 2, Anchor: geometry.Pt(0, 0)},
		SelectTool{Tool: ToolRectangle},
		PointerDown{At: geometry.Pt(200, 200)},
		PointerUp{At: geometry.Pt(400, 300)},
	)

	rect := e.Annotations()[0].(annotation.Rectangle)
	assert.Equal(t, geometry.Pt(100, 100), rect.Origin)
	assert.Equal(t, 100.0, rect.Width)
	assert.Equal(t, 50.0, rect.Height)

	dispatch(t, e, ResetView{})
	assert.Equal(t, viewport.New(), e.Viewport())
}

func TestZoom_Clamped(t *testing.T) {
	e := newTestEditor()
	for i := 0; i < 50; i++ {
		dispatch(t, e, ZoomBy{Factor: viewport.ZoomStep, Anchor: geometry.Pt(500, 350)})
	}
	assert.Equal(t, viewport.MaxZoom, e.Viewport().Zoom)
}

func TestPlaceIcon_AtVisibleCenter(t *testing.T) {
	e := newTestEditor()
	dispatch(t, e, ZoomBy{Factor: 2, Anchor: geometry.Pt(0, 0)}, PlaceIcon{Category: "hazard"})

	icon := e.Annotations()[0].(annotation.FeatureIcon)
	assert.Equal(t, geometry.Pt(250, 175), icon.Position)
	assert.Equal(t, "Hazard", icon.Label)

	assert.ErrorIs(t, e.Dispatch(PlaceIcon{Category: "volcano"}), ErrUnknownCategory)
}

func TestText_PromptFlow(t *testing.T) {
	e := newTestEditor()
	var requested []geometry.Point2D
	e.On(EventTextRequested, func(data interface{}) {
		requested = append(requested, data.(geometry.Point2D))
	})

	dispatch(t, e, SelectTool{Tool: ToolText}, PointerDown{At: geometry.Pt(40, 60)}, PointerUp{At: geometry.Pt(40, 60)})
	require.Len(t, requested, 1)
	assert.Empty(t, e.Annotations(), "nothing until the host answers")

	dispatch(t, e, PlaceText{At: requested[0], Content: "   "})
	assert.Empty(t, e.Annotations(), "cancelled prompt")

	dispatch(t, e, PlaceText{At: requested[0], Content: "Gate B"})
	text := e.Annotations()[0].(annotation.Text)
	assert.Equal(t, "Gate B", text.Content)
	assert.Equal(t, geometry.Pt(40, 60), text.Position)
}

func TestClearAll(t *testing.T) {
	e := newTestEditor()
	dispatch(t, e, PlaceIcon{Category: "light"}, PlaceIcon{Category: "camera"}, ClearAll{})

	assert.Empty(t, e.Annotations())
	dispatch(t, e, Undo{})
	assert.Len(t, e.Annotations(), 2)
}

func TestSetColor_Validates(t *testing.T) {
	e := newTestEditor()
	assert.ErrorIs(t, e.Dispatch(SetColor{Color: "blue"}), ErrInvalidColor)
	require.NoError(t, e.Dispatch(SetColor{Color: "#123456"}))
	assert.Equal(t, "#123456", e.Color())
}

func TestListenersMayReadEditor(t *testing.T) {
	e := newTestEditor()
	var counts []int
	e.On(EventSceneChanged, func(data interface{}) {
		counts = append(counts, len(e.Annotations()))
		assert.Equal(t, data.(int), len(e.Annotations()))
	})

	dispatch(t, e, PlaceIcon{Category: "drain"}, PlaceIcon{Category: "drain"})
	assert.Equal(t, []int{1, 2}, counts)
}

func TestSaveFrame_IsCanonical(t *testing.T) {
	e := newTestEditor()
	dispatch(t, e,
		PlaceIcon{Category: "drain"},
		ToggleGrid{},
		ZoomBy{Factor: 2, Anchor: geometry.Pt(10, 10)},
		SelectTool{Tool: ToolPen},
		PointerDown{At: geometry.Pt(1, 1)},
	)
	id := e.Annotations()[0].AnnotationID()
	dispatch(t, e, Select{ID: id})

	f := e.SaveFrame()
	assert.False(t, f.Grid)
	assert.Empty(t, f.SelectedID)
	assert.Equal(t, viewport.New(), f.Viewport)
	assert.Len(t, f.Annotations, 1, "pen draft is not saved")

	live := e.Frame()
	assert.True(t, live.Grid)
	assert.Len(t, live.Annotations, 2)
}

func TestLoadScene_ResetsHistory(t *testing.T) {
	e := newTestEditor()
	dispatch(t, e, PlaceIcon{Category: "drain"})

	dispatch(t, e, LoadScene{Annotations: annotation.List{annotation.Circle{ID: "x"}, annotation.Circle{ID: "y"}}})

	assert.Len(t, e.Annotations(), 2)
	assert.False(t, e.CanUndo())
}

func TestToolString(t *testing.T) {
	assert.Equal(t, "polygon", ToolPolygon.String())
	assert.Equal(t, "select", ToolSelect.String())
	assert.Equal(t, "unknown", Tool(42).String())
}
