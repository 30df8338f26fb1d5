package editor

import (
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/pkg/geometry"
)

// pointerDown handles a press at canvas point p (screen point s).
func (e *Editor) pointerDown(p, s geometry.Point2D) []notification {
	e.lastMove = time.Time{}

	switch e.tool {
	case ToolSelect:
		return e.pick(p, s)
	case ToolPen:
		e.draft = annotation.Line{ID: annotation.NewID(), Color: e.color, Points: []geometry.Point2D{p}}
	case ToolCircle:
		e.draft = annotation.Circle{ID: annotation.NewID(), Color: e.color, Center: p}
	case ToolRectangle:
		e.draft = annotation.Rectangle{ID: annotation.NewID(), Color: e.color, Origin: p}
	case ToolText:
		return []notification{{EventTextRequested, p}}
	case ToolPolygon:
		e.addPolygonPoint(p)
	}
	return []notification{{EventRedraw, nil}}
}

// pick selects the topmost annotation under p and starts dragging it when
// it is movable. A press on empty canvas clears the selection and pans.
func (e *Editor) pick(p, s geometry.Point2D) []notification {
	hit, ok := e.list.TopmostAt(p, hitTolerance/e.vp.Zoom)
	if !ok {
		e.pan = &panState{last: s}
		return e.setSelection("")
	}

	if m, movable := hit.(annotation.Movable); movable {
		e.drag = &dragState{start: p, original: m, preview: m}
	}
	out := e.setSelection(hit.AnnotationID())
	return append(out, notification{EventRedraw, nil})
}

func (e *Editor) pointerMove(p, s geometry.Point2D) []notification {
	switch {
	case e.pan != nil:
		delta := s.Sub(e.pan.last)
		e.pan.last = s
		return e.setViewport(e.vp.PannedBy(delta))
	case e.drag != nil:
		e.drag.preview = e.drag.original.MovedBy(p.Sub(e.drag.start))
	case e.draft != nil:
		e.draft = resize(e.draft, p)
	case e.tool == ToolPolygon && len(e.polygon) > 0:
		c := p
		e.cursor = &c
	default:
		return nil
	}
	return []notification{{EventRedraw, nil}}
}

// pointerUp applies the final position, then finishes whatever the press
// started.
func (e *Editor) pointerUp(p, s geometry.Point2D) []notification {
	switch {
	case e.pan != nil:
		out := e.setViewport(e.vp.PannedBy(s.Sub(e.pan.last)))
		e.pan = nil
		return out
	case e.drag != nil:
		d := e.drag
		e.drag = nil
		d.preview = d.original.MovedBy(p.Sub(d.start))
		if p == d.start {
			return nil
		}
		list, err := e.list.Replace(d.preview)
		if err != nil {
			return []notification{{EventRedraw, nil}}
		}
		e.list = list
		e.hist.Snapshot(e.list)
		return []notification{e.sceneChanged()}
	case e.draft != nil:
		a := resize(e.draft, p)
		e.draft = nil
		return []notification{e.commit(a)}
	}
	return nil
}

// resize updates a draft for the pointer at p.
func resize(a annotation.Annotation, p geometry.Point2D) annotation.Annotation {
	switch v := a.(type) {
	case annotation.Line:
		if n := len(v.Points); n > 0 && v.Points[n-1] == p {
			return v
		}
		return v.WithPoint(p)
	case annotation.Circle:
		v.Radius = v.Center.Distance(p)
		return v
	case annotation.Rectangle:
		v.Width = p.X - v.Origin.X
		v.Height = p.Y - v.Origin.Y
		return v
	}
	return a
}

// addPolygonPoint appends p unless it repeats the last vertex, which is what
// the presses of a double-click produce.
func (e *Editor) addPolygonPoint(p geometry.Point2D) {
	if n := len(e.polygon); n > 0 && e.polygon[n-1].ApproxEqual(p, coincident) {
		return
	}
	e.polygon = append(e.polygon, p)
}

// doubleClick closes the polygon being drawn. With fewer than
// MinPolygonPoints vertices it does nothing and drawing continues.
func (e *Editor) doubleClick(p geometry.Point2D) []notification {
	if e.tool != ToolPolygon {
		return nil
	}

	pts := geometry.ClonePoints(e.polygon)
	if n := len(pts); n == 0 || !pts[n-1].ApproxEqual(p, coincident) {
		pts = append(pts, p)
	}
	if len(pts) < annotation.MinPolygonPoints {
		return nil
	}

	area, _ := annotation.LookupArea(e.category)
	poly := annotation.Polygon{
		ID:       annotation.NewID(),
		Category: area.ID,
		Label:    area.Label,
		Color:    area.Color,
		Points:   pts,
	}
	e.cancelTransient()
	e.tool, e.category = ToolSelect, ""
	return []notification{e.commit(poly), {EventToolChanged, ToolSelect}}
}
