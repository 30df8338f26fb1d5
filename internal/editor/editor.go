// Package editor implements the annotation editor: the tool state machine,
// committed scene, undo history and viewport behind a single reducer.
//
// All input goes through Dispatch. State is split in two tiers: the committed
// annotation list, which is snapshotted into history, and transient
// interaction state (the shape being drawn, a drag or pan in progress,
// polygon points) which is only visible through Frame until it is committed.
package editor

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/history"
	"site-mapper/internal/render"
	"site-mapper/internal/viewport"
	"site-mapper/pkg/colorutil"
	"site-mapper/pkg/geometry"

	"github.com/rs/zerolog"
)

// Defaults.
const (
	DefaultColor        = "#FF0000"
	DefaultMoveInterval = time.Second / 60

	// hitTolerance is the pick distance in screen pixels.
	hitTolerance = 6.0

	// coincident is the canvas distance under which two polygon clicks are
	// treated as the same vertex.
	coincident = 1.0
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidColor    = errors.New("invalid color")
	ErrUnknownTool     = errors.New("unknown tool")
)

// Editor owns one editing session. It is safe for concurrent use; Dispatch
// calls are serialized.
type Editor struct {
	mu sync.RWMutex

	// Committed tier
	list       annotation.List
	hist       *history.History
	selected   string
	background image.Image

	// Settings
	tool     Tool
	category string
	color    string
	grid     bool
	vp       viewport.Viewport
	width    float64
	height   float64

	// Transient tier
	draft    annotation.Annotation
	drag     *dragState
	pan      *panState
	polygon  []geometry.Point2D
	cursor   *geometry.Point2D
	lastMove time.Time

	clock        func() time.Time
	moveInterval time.Duration
	log          zerolog.Logger

	listeners map[EventType][]EventListener
}

type dragState struct {
	start    geometry.Point2D
	original annotation.Movable
	preview  annotation.Annotation
}

type panState struct {
	last geometry.Point2D
}

// Option configures an Editor.
type Option func(*Editor)

// WithAnnotations restores a previously saved scene as history entry 0.
func WithAnnotations(list annotation.List) Option {
	return func(e *Editor) { e.list = list.Clone() }
}

// WithClock replaces time.Now for pointer-move throttling.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.clock = now }
}

// WithMoveInterval sets the minimum spacing of handled pointer moves.
// Zero disables throttling.
func WithMoveInterval(d time.Duration) Option {
	return func(e *Editor) { e.moveInterval = d }
}

// WithColor sets the initial stroke color.
func WithColor(c string) Option {
	return func(e *Editor) { e.color = c }
}

// WithCanvasSize sets the visible area used to center placed icons.
func WithCanvasSize(width, height float64) Option {
	return func(e *Editor) { e.width, e.height = width, height }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// New creates an editor in select mode.
func New(opts ...Option) *Editor {
	e := &Editor{
		list:         annotation.List{},
		tool:         ToolSelect,
		color:        DefaultColor,
		vp:           viewport.New(),
		width:        render.CanvasWidth,
		height:       render.CanvasHeight,
		clock:        time.Now,
		moveInterval: DefaultMoveInterval,
		log:          zerolog.Nop(),
		listeners:    make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hist = history.New(history.MaxHistory, e.list)
	e.log = e.log.With().Str("component", "editor").Logger()
	return e
}

// On registers an event listener for the specified event type.
func (e *Editor) On(event EventType, listener EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (e *Editor) Emit(event EventType, data interface{}) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Dispatch applies ev to the editor. Notifications are delivered after the
// state lock is released, so listeners may read the editor or dispatch.
// An error means the event was rejected and nothing changed.
func (e *Editor) Dispatch(ev Event) error {
	e.mu.Lock()
	out, err := e.reduce(ev)
	e.mu.Unlock()

	for _, n := range out {
		e.Emit(n.event, n.data)
	}
	return err
}

func (e *Editor) reduce(ev Event) ([]notification, error) {
	switch ev := ev.(type) {
	case PointerDown:
		return e.pointerDown(e.vp.ToCanvasSpace(ev.At), ev.At), nil
	case PointerMove:
		if e.throttled() {
			return nil, nil
		}
		return e.pointerMove(e.vp.ToCanvasSpace(ev.At), ev.At), nil
	case PointerUp:
		return e.pointerUp(e.vp.ToCanvasSpace(ev.At), ev.At), nil
	case DoubleClick:
		return e.doubleClick(e.vp.ToCanvasSpace(ev.At)), nil
	case KeyPress:
		return e.keyPress(ev), nil
	case SelectTool:
		return e.selectTool(ev.Tool, ev.Category)
	case PlaceIcon:
		return e.placeIcon(ev.Category)
	case PlaceText:
		return e.placeText(ev.At, ev.Content), nil
	case Undo:
		return e.undo(), nil
	case Redo:
		return e.redo(), nil
	case DeleteSelected:
		return e.deleteSelected(), nil
	case ClearAll:
		return e.clearAll(), nil
	case ZoomBy:
		return e.setViewport(e.vp.ZoomAt(ev.Factor, ev.Anchor)), nil
	case ResetView:
		return e.setViewport(viewport.New()), nil
	case ToggleGrid:
		e.grid = !e.grid
		return []notification{{EventRedraw, nil}}, nil
	case SetColor:
		if _, err := colorutil.ParseHex(ev.Color); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColor, ev.Color)
		}
		e.color = ev.Color
		return nil, nil
	case SetBackground:
		e.background = ev.Image
		return []notification{{EventRedraw, nil}}, nil
	case Select:
		return e.selectID(ev.ID)
	case LoadScene:
		e.cancelTransient()
		e.list = ev.Annotations.Clone()
		e.hist.Reset(e.list)
		out := e.setSelection("")
		return append(out, e.sceneChanged()), nil
	default:
		return nil, fmt.Errorf("unsupported event %T", ev)
	}
}

// throttled reports whether a pointer move arriving now should be dropped.
func (e *Editor) throttled() bool {
	if e.moveInterval <= 0 {
		return false
	}
	now := e.clock()
	if !e.lastMove.IsZero() && now.Sub(e.lastMove) < e.moveInterval {
		return true
	}
	e.lastMove = now
	return false
}

// commit appends a finished annotation to the scene and records it.
func (e *Editor) commit(a annotation.Annotation) notification {
	e.list = e.list.With(a)
	e.hist.Snapshot(e.list)
	e.log.Debug().Str("kind", string(a.Kind())).Str("id", a.AnnotationID()).Msg("annotation committed")
	return e.sceneChanged()
}

func (e *Editor) sceneChanged() notification {
	return notification{EventSceneChanged, len(e.list)}
}

func (e *Editor) setSelection(id string) []notification {
	if e.selected == id {
		return nil
	}
	e.selected = id
	return []notification{{EventSelectionChanged, id}}
}

func (e *Editor) setViewport(v viewport.Viewport) []notification {
	if v == e.vp {
		return nil
	}
	e.vp = v
	return []notification{{EventViewportChanged, v}}
}

func (e *Editor) cancelTransient() {
	e.draft = nil
	e.drag = nil
	e.pan = nil
	e.polygon = nil
	e.cursor = nil
}

func (e *Editor) keyPress(k KeyPress) []notification {
	if k.Ctrl || k.Meta {
		switch strings.ToLower(k.Key) {
		case "z":
			return e.undo()
		case "y":
			return e.redo()
		case "s":
			return []notification{{EventSaveRequested, nil}}
		}
		return nil
	}

	switch k.Key {
	case KeyDelete:
		return e.deleteSelected()
	case KeyEscape:
		e.cancelTransient()
		out := []notification{{EventRedraw, nil}}
		if e.tool != ToolSelect {
			e.tool, e.category = ToolSelect, ""
			out = append(out, notification{EventToolChanged, ToolSelect})
		}
		return out
	}
	return nil
}

func (e *Editor) selectTool(t Tool, category string) ([]notification, error) {
	if t < ToolSelect || t > ToolPolygon {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTool, t)
	}
	if t == ToolPolygon {
		if _, ok := annotation.LookupArea(category); !ok {
			return nil, fmt.Errorf("%w: area %q", ErrUnknownCategory, category)
		}
	} else {
		category = ""
	}

	e.cancelTransient()
	e.tool, e.category = t, category
	return []notification{{EventToolChanged, t}, {EventRedraw, nil}}, nil
}

func (e *Editor) placeIcon(category string) ([]notification, error) {
	cat, ok := annotation.LookupIcon(category)
	if !ok {
		return nil, fmt.Errorf("%w: icon %q", ErrUnknownCategory, category)
	}
	icon := annotation.FeatureIcon{
		ID:       annotation.NewID(),
		Category: cat.ID,
		Label:    cat.Label,
		Color:    cat.Color,
		Position: e.vp.VisibleCenter(e.width, e.height),
	}
	return []notification{e.commit(icon)}, nil
}

func (e *Editor) placeText(at geometry.Point2D, content string) []notification {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []notification{e.commit(annotation.Text{
		ID:       annotation.NewID(),
		Color:    e.color,
		Position: at,
		Content:  content,
		FontSize: annotation.DefaultFontSize,
	})}
}

func (e *Editor) undo() []notification {
	list, ok := e.hist.Undo()
	if !ok {
		return nil
	}
	return e.restore(list)
}

func (e *Editor) redo() []notification {
	list, ok := e.hist.Redo()
	if !ok {
		return nil
	}
	return e.restore(list)
}

func (e *Editor) restore(list annotation.List) []notification {
	e.draft, e.drag = nil, nil
	e.list = list
	var out []notification
	if e.selected != "" && !e.list.Contains(e.selected) {
		out = e.setSelection("")
	}
	return append(out, e.sceneChanged())
}

func (e *Editor) deleteSelected() []notification {
	if e.selected == "" {
		return nil
	}
	list, err := e.list.Without(e.selected)
	if err != nil {
		e.log.Warn().Err(err).Str("id", e.selected).Msg("selected annotation missing")
		return e.setSelection("")
	}
	e.drag = nil
	e.list = list
	e.hist.Snapshot(e.list)
	out := e.setSelection("")
	return append(out, e.sceneChanged())
}

func (e *Editor) clearAll() []notification {
	if len(e.list) == 0 {
		return nil
	}
	e.cancelTransient()
	e.list = annotation.List{}
	e.hist.Snapshot(e.list)
	out := e.setSelection("")
	return append(out, e.sceneChanged())
}

func (e *Editor) selectID(id string) ([]notification, error) {
	if id != "" && !e.list.Contains(id) {
		return nil, fmt.Errorf("select %s: %w", id, annotation.ErrNotFound)
	}
	return e.setSelection(id), nil
}

// Annotations returns a copy of the committed scene.
func (e *Editor) Annotations() annotation.List {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.list.Clone()
}

// Selected returns the selected annotation id, or "".
func (e *Editor) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// Tool returns the active tool and, for ToolPolygon, its area category.
func (e *Editor) Tool() (Tool, string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tool, e.category
}

func (e *Editor) Color() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.color
}

func (e *Editor) Viewport() viewport.Viewport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vp
}

func (e *Editor) GridVisible() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid
}

func (e *Editor) Background() image.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.background
}

// PolygonPoints returns the vertices of the polygon being drawn.
func (e *Editor) PolygonPoints() []geometry.Point2D {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return geometry.ClonePoints(e.polygon)
}

func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hist.CanRedo()
}

// Frame returns what the screen should show, including transient state.
func (e *Editor) Frame() render.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := e.list.Clone()
	if e.drag != nil {
		if replaced, err := list.Replace(e.drag.preview); err == nil {
			list = replaced
		}
	}
	if e.draft != nil {
		list = list.With(e.draft.Clone())
	}

	f := render.Frame{
		Background:  e.background,
		Grid:        e.grid,
		Annotations: list,
		SelectedID:  e.selected,
		Viewport:    e.vp,
	}
	if len(e.polygon) > 0 {
		p := &render.PolygonPreview{Points: geometry.ClonePoints(e.polygon)}
		if area, ok := annotation.LookupArea(e.category); ok {
			p.Color = area.Color
		}
		if e.cursor != nil {
			c := *e.cursor
			p.Cursor = &c
		}
		f.Preview = p
	}
	return f
}

// SaveFrame returns the committed scene as persisted: identity viewport, no
// grid, no selection and no transient state.
func (e *Editor) SaveFrame() render.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return render.Frame{
		Background:  e.background,
		Annotations: e.list.Clone(),
		Viewport:    viewport.New(),
	}
}
