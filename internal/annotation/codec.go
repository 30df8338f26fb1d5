package annotation

import (
	"encoding/json"
	"errors"
	"fmt"

	"site-mapper/pkg/geometry"
)

// ErrUnknownKind is returned when decoding a record with an unsupported type.
var ErrUnknownKind = errors.New("unknown annotation type")

// record is the flat wire form shared by every kind. Points are stored as
// interleaved coordinates, matching the payload consumed by the web console.
type record struct {
	ID       string    `json:"id"`
	Type     Kind      `json:"type"`
	Color    string    `json:"color,omitempty"`
	Points   []float64 `json:"points,omitempty"`
	X        float64   `json:"x,omitempty"`
	Y        float64   `json:"y,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Width    float64   `json:"width,omitempty"`
	Height   float64   `json:"height,omitempty"`
	Text     string    `json:"text,omitempty"`
	FontSize float64   `json:"fontSize,omitempty"`
	Category string    `json:"category,omitempty"`
	Label    string    `json:"label,omitempty"`
}

func toRecord(a Annotation) (record, error) {
	r := record{ID: a.AnnotationID(), Type: a.Kind(), Color: a.StrokeColor()}

	switch v := a.(type) {
	case Line:
		r.Points = geometry.Flatten(v.Points)
	case Circle:
		r.X, r.Y, r.Radius = v.Center.X, v.Center.Y, v.Radius
	case Rectangle:
		r.X, r.Y, r.Width, r.Height = v.Origin.X, v.Origin.Y, v.Width, v.Height
	case Polygon:
		r.Points = geometry.Flatten(v.Points)
		r.Category, r.Label = v.Category, v.Label
	case FeatureIcon:
		r.X, r.Y = v.Position.X, v.Position.Y
		r.Category, r.Label = v.Category, v.Label
	case Text:
		r.X, r.Y = v.Position.X, v.Position.Y
		r.Text, r.FontSize = v.Content, v.FontSize
	default:
		return record{}, fmt.Errorf("%w: %T", ErrUnknownKind, a)
	}
	return r, nil
}

func (r record) annotation() (Annotation, error) {
	pos := geometry.Pt(r.X, r.Y)

	switch r.Type {
	case KindLine:
		pts, err := geometry.Unflatten(r.Points)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", r.ID, err)
		}
		return Line{ID: r.ID, Color: r.Color, Points: pts}, nil
	case KindCircle:
		return Circle{ID: r.ID, Color: r.Color, Center: pos, Radius: r.Radius}, nil
	case KindRectangle:
		return Rectangle{ID: r.ID, Color: r.Color, Origin: pos, Width: r.Width, Height: r.Height}, nil
	case KindPolygon:
		pts, err := geometry.Unflatten(r.Points)
		if err != nil {
			return nil, fmt.Errorf("polygon %s: %w", r.ID, err)
		}
		return Polygon{ID: r.ID, Category: r.Category, Label: r.Label, Color: r.Color, Points: pts}, nil
	case KindFeatureIcon:
		return FeatureIcon{ID: r.ID, Category: r.Category, Label: r.Label, Color: r.Color, Position: pos}, nil
	case KindText:
		return Text{ID: r.ID, Color: r.Color, Position: pos, Content: r.Text, FontSize: r.FontSize}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, r.Type)
	}
}

// MarshalJSON encodes the list as an array of flat records.
func (l List) MarshalJSON() ([]byte, error) {
	records := make([]record, 0, len(l))
	for _, a := range l {
		r, err := toRecord(a)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return json.Marshal(records)
}

// UnmarshalJSON decodes an array of flat records. Records without an id are
// assigned a fresh one so every decoded annotation stays addressable.
func (l *List) UnmarshalJSON(data []byte) error {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode annotations: %w", err)
	}

	out := make(List, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = NewID()
		}
		a, err := r.annotation()
		if err != nil {
			return err
		}
		out = append(out, a)
	}
	*l = out
	return nil
}
