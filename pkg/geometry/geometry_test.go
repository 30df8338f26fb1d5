package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRect_Normalize(t *testing.T) {
	r := NewRect(100, 100, -40, -20).Normalize()

	assert.Equal(t, NewRect(60, 80, 40, 20), r)
	assert.True(t, NewRect(100, 100, -40, -20).Contains(Pt(70, 90)))
	assert.False(t, NewRect(100, 100, -40, -20).Contains(Pt(110, 90)))
}

func TestAffineTransform_InverseRoundTrip(t *testing.T) {
	tr := Translation(35, -12).Compose(Scale(2.5, 2.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := Pt(17.25, -3.5)
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestAffineTransform_ComposeOrder(t *testing.T) {
	// Scale applies first, then the translation.
	tr := Translation(10, 20).Compose(Scale(2, 2))
	assert.Equal(t, Pt(12, 24), tr.Apply(Pt(1, 2)))
}

func TestAffineTransform_SingularHasNoInverse(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestDistanceToSegment(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)

	assert.InDelta(t, 5.0, DistanceToSegment(Pt(5, 5), a, b), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Pt(-3, 4), a, b), 1e-9)
	assert.InDelta(t, 5.0, DistanceToSegment(Pt(3, 4), a, a), 1e-9)
}

func TestDistanceToPolyline_Empty(t *testing.T) {
	assert.True(t, math.IsInf(DistanceToPolyline(Pt(1, 1), nil), 1))
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}

	assert.True(t, PointInPolygon(Pt(5, 5), square))
	assert.False(t, PointInPolygon(Pt(15, 5), square))
	assert.False(t, PointInPolygon(Pt(5, 5), square[:2]))
}

func TestFlattenUnflatten(t *testing.T) {
	pts := []Point2D{Pt(10, 10), Pt(50, 10), Pt(50, 50)}
	flat := Flatten(pts)
	assert.Equal(t, []float64{10, 10, 50, 10, 50, 50}, flat)

	back, err := Unflatten(flat)
	require.NoError(t, err)
	assert.Equal(t, pts, back)

	_, err = Unflatten([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestBoundingBoxAndCentroid(t *testing.T) {
	pts := []Point2D{Pt(2, 8), Pt(6, 2), Pt(4, 5)}

	assert.Equal(t, NewRect(2, 2, 4, 6), BoundingBox(pts))
	assert.Equal(t, Pt(4, 5), Centroid(pts))
	assert.Equal(t, Rect{}, BoundingBox(nil))
}
