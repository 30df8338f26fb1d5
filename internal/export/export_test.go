package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"testing"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/georef"
	"site-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(id, category string, size float64) annotation.Polygon {
	area, _ := annotation.LookupArea(category)
	return annotation.Polygon{ID: id, Category: category, Label: area.Label, Color: area.Color, Points: []geometry.Point2D{
		geometry.Pt(0, 0), geometry.Pt(size, 0), geometry.Pt(size, size), geometry.Pt(0, size),
	}}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, image.NewRGBA(image.Rect(0, 0, 12, 7))))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 7), img.Bounds())
}

func TestAreaRows_CanvasUnits(t *testing.T) {
	list := annotation.List{
		square("a", "parking", 10),
		annotation.Circle{ID: "c"},
		square("b", "no_parking", 20),
	}

	rows := AreaRows(list, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "No Parking Zone", rows[0].Label)
	assert.Equal(t, 400.0, rows[0].Area)
	assert.Equal(t, "100.0 px²", rows[1].FormatArea())
}

func TestAreaRows_Georeferenced(t *testing.T) {
	g, err := georef.FromStaticMap(georef.StaticMap{Center: georef.LonLat{Lon: 0, Lat: 0}, Zoom: 19, Width: 1000, Height: 700})
	require.NoError(t, err)

	bowtie := annotation.Polygon{ID: "x", Category: "work_zone", Points: []geometry.Point2D{
		geometry.Pt(0, 0), geometry.Pt(10, 10), geometry.Pt(10, 0), geometry.Pt(0, 10),
	}}
	rows := AreaRows(annotation.List{square("a", "parking", 100), bowtie}, &g)
	require.Len(t, rows, 2)

	mpp := georef.MetersPerPixel(19)
	assert.InEpsilon(t, 100*mpp*100*mpp, rows[0].Area, 1e-3)
	assert.Equal(t, "m²", rows[0].Unit)
	assert.Equal(t, "n/a", rows[1].FormatArea())
	assert.Equal(t, "work_zone", rows[1].Label, "falls back to the category id")
}

func TestWritePDF(t *testing.T) {
	doc := Document{
		Title:       "North Depot",
		SiteName:    "North Depot",
		SiteAddress: "1 Depot Rd",
		Generated:   time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Image:       image.NewRGBA(image.Rect(0, 0, 100, 70)),
		Annotations: annotation.List{square("a", "parking", 10)},
		Legend:      annotation.LegendItems(),
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, doc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestBuildPDF_PaginatesLegend(t *testing.T) {
	var legend []annotation.LegendItem
	for i := 0; i < 120; i++ {
		legend = append(legend, annotation.LegendItem{ID: fmt.Sprint(i), Label: fmt.Sprintf("Item %d", i), Color: "#123456", Kind: annotation.LegendIcon})
	}

	short, err := buildPDF(Document{Legend: legend[:5]})
	require.NoError(t, err)
	assert.Equal(t, 1, short.GetNumberOfPages())

	long, err := buildPDF(Document{Legend: legend, Image: image.NewRGBA(image.Rect(0, 0, 1000, 700))})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, long.GetNumberOfPages(), 3)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatPDF, FormatFor("/tmp/site.PDF"))
	assert.Equal(t, FormatPNG, FormatFor("site.png"))
	assert.Equal(t, FormatPNG, FormatFor("site"))
}
