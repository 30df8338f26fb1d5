// Package georef relates canvas coordinates to the ground: it maps canvas
// points to longitude/latitude and measures area polygons in square meters.
//
// Canvas space is related to Web Mercator (EPSG:3857) by an affine
// transform, either derived from the static map the background was fetched
// from or fitted to user-supplied control points.
package georef

import (
	"errors"
	"fmt"
	"math"

	"site-mapper/pkg/geometry"

	"github.com/wroge/wgs84"
	"gonum.org/v1/gonum/mat"
)

const (
	earthRadius = 6378137.0
	tileSize    = 256.0
)

var (
	ErrTooFewPoints = errors.New("need at least 3 control points")
	ErrDegenerate   = errors.New("control points do not span an area")
)

// LonLat is a WGS84 position in degrees.
type LonLat struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// ControlPoint pins a canvas point to a known position.
type ControlPoint struct {
	Canvas   geometry.Point2D `json:"canvas"`
	Position LonLat           `json:"position"`
}

// StaticMap describes the frame of a fetched satellite image: its center,
// provider zoom and the canvas size it was fitted to.
type StaticMap struct {
	Center LonLat `json:"center"`
	Zoom   int    `json:"zoom"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Georef converts between canvas space and the ground.
type Georef struct {
	toMercator   geometry.AffineTransform
	fromMercator geometry.AffineTransform
	residual     float64
}

// ToMercator projects a WGS84 position to EPSG:3857 meters.
func ToMercator(p LonLat) geometry.Point2D {
	x, y, _ := wgs84.EPSG().Transform(4326, 3857)(p.Lon, p.Lat, 0)
	return geometry.Pt(x, y)
}

// FromMercator is the inverse of ToMercator.
func FromMercator(p geometry.Point2D) LonLat {
	lon, lat, _ := wgs84.EPSG().Transform(3857, 4326)(p.X, p.Y, 0)
	return LonLat{Lon: lon, Lat: lat}
}

// MetersPerPixel returns the Web Mercator meters covered by one pixel of a
// standard 256px tile pyramid at zoom.
func MetersPerPixel(zoom int) float64 {
	return 2 * math.Pi * earthRadius / (tileSize * math.Exp2(float64(zoom)))
}

// FromStaticMap returns the georeference of a static map image fitted to
// the canvas without cropping.
func FromStaticMap(m StaticMap) (Georef, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return Georef{}, fmt.Errorf("invalid static map size %dx%d", m.Width, m.Height)
	}
	c := ToMercator(m.Center)
	mpp := MetersPerPixel(m.Zoom)

	t := geometry.AffineTransform{
		A: mpp, TX: c.X - float64(m.Width)/2*mpp,
		D: -mpp, TY: c.Y + float64(m.Height)/2*mpp,
	}
	return newGeoref(t, 0)
}

// Fit computes the least-squares affine georeference of the control points.
func Fit(points []ControlPoint) (Georef, error) {
	if len(points) < 3 {
		return Georef{}, ErrTooFewPoints
	}
	src := make([]geometry.Point2D, len(points))
	dst := make([]geometry.Point2D, len(points))
	for i, p := range points {
		src[i] = p.Canvas
		dst[i] = ToMercator(p.Position)
	}

	t, err := affineLeastSquares(src, dst)
	if err != nil {
		return Georef{}, err
	}

	var sum float64
	for i := range src {
		d := t.Apply(src[i]).Distance(dst[i])
		sum += d * d
	}
	return newGeoref(t, math.Sqrt(sum/float64(len(src))))
}

func newGeoref(t geometry.AffineTransform, residual float64) (Georef, error) {
	inv, ok := t.Inverse()
	if !ok {
		return Georef{}, ErrDegenerate
	}
	return Georef{toMercator: t, fromMercator: inv, residual: residual}, nil
}

// affineLeastSquares solves dst = T(src) for the six affine parameters
// using QR decomposition of the overdetermined system.
func affineLeastSquares(src, dst []geometry.Point2D) (geometry.AffineTransform, error) {
	n := len(src)
	A := mat.NewDense(n*2, 6, nil)
	B := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		B.SetVec(i*2, dst[i].X)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		B.SetVec(i*2+1, dst[i].Y)
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	return geometry.AffineTransform{
		A:  params.AtVec(0),
		B:  params.AtVec(1),
		TX: params.AtVec(2),
		C:  params.AtVec(3),
		D:  params.AtVec(4),
		TY: params.AtVec(5),
	}, nil
}

// ToLonLat maps a canvas point to WGS84.
func (g Georef) ToLonLat(p geometry.Point2D) LonLat {
	return FromMercator(g.toMercator.Apply(p))
}

// ToCanvas maps a WGS84 position to canvas space.
func (g Georef) ToCanvas(p LonLat) geometry.Point2D {
	return g.fromMercator.Apply(ToMercator(p))
}

// Residual is the RMS fit error in mercator meters; zero for static maps.
func (g Georef) Residual() float64 {
	return g.residual
}
