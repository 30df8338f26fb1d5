package annotation

import (
	"errors"

	"site-mapper/pkg/geometry"
)

// ErrNotFound is returned when an annotation id is not present in a List.
var ErrNotFound = errors.New("annotation not found")

// List is an ordered annotation collection. Later entries draw on top.
type List []Annotation

// Clone returns a deep copy of the list.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	for i, a := range l {
		out[i] = a.Clone()
	}
	return out
}

// Find returns the annotation with the given id.
func (l List) Find(id string) (Annotation, bool) {
	if i := l.indexOf(id); i >= 0 {
		return l[i], true
	}
	return nil, false
}

// Contains reports whether an annotation with the given id exists.
func (l List) Contains(id string) bool {
	return l.indexOf(id) >= 0
}

// With returns a new list with a appended.
func (l List) With(a Annotation) List {
	out := make(List, len(l), len(l)+1)
	copy(out, l)
	return append(out, a)
}

// Without returns a new list with the annotation removed.
func (l List) Without(id string) (List, error) {
	i := l.indexOf(id)
	if i < 0 {
		return l, ErrNotFound
	}
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), nil
}

// Replace returns a new list where the entry with a's id is swapped for a.
func (l List) Replace(a Annotation) (List, error) {
	i := l.indexOf(a.AnnotationID())
	if i < 0 {
		return l, ErrNotFound
	}
	out := make(List, len(l))
	copy(out, l)
	out[i] = a
	return out, nil
}

// TopmostAt returns the last-drawn annotation under p.
func (l List) TopmostAt(p geometry.Point2D, tol float64) (Annotation, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].HitTest(p, tol) {
			return l[i], true
		}
	}
	return nil, false
}

// Polygons returns the area polygons of the list in order.
func (l List) Polygons() []Polygon {
	var out []Polygon
	for _, a := range l {
		if g, ok := a.(Polygon); ok {
			out = append(out, g)
		}
	}
	return out
}

func (l List) indexOf(id string) int {
	for i, a := range l {
		if a.AnnotationID() == id {
			return i
		}
	}
	return -1
}
