package georef

import (
	"fmt"
	"math"

	"site-mapper/internal/annotation"
	"site-mapper/pkg/geometry"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Area returns the ground area of an area polygon in square meters.
//
// The ring is measured in Web Mercator and scaled by cos²(latitude) at its
// centroid, which is accurate for site-sized polygons.
func (g Georef) Area(p annotation.Polygon) (float64, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("polygon %s has %d points", p.ID, len(p.Points))
	}

	flat := make([]float64, 0, 2*(len(p.Points)+1))
	merc := make([]geometry.Point2D, len(p.Points))
	for i, pt := range p.Points {
		merc[i] = g.toMercator.Apply(pt)
		flat = append(flat, merc[i].X, merc[i].Y)
	}
	flat = append(flat, merc[0].X, merc[0].Y)

	ring := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	poly := geom.NewPolygon([]geom.LineString{ring})
	if err := poly.Validate(); err != nil {
		return 0, fmt.Errorf("polygon %s: %w", p.ID, err)
	}

	lat := FromMercator(geometry.Centroid(merc)).Lat * math.Pi / 180
	scale := math.Cos(lat)
	return poly.Area() * scale * scale, nil
}

// CanvasArea is the polygon area in canvas units, for scenes without a
// georeference.
func CanvasArea(p annotation.Polygon) float64 {
	var sum float64
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}
