// Package export writes the rendered site map as a PNG image or a paginated
// PDF report with a legend and an area table.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"site-mapper/internal/annotation"
	"site-mapper/internal/georef"
)

// Format is an export file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// FormatFor picks the format from a file extension. Anything but ".pdf" is PNG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF
	}
	return FormatPNG
}

// WritePNG encodes the rendered scene.
func WritePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// AreaRow is one line of the area table.
type AreaRow struct {
	Label    string
	Category string
	Color    string
	Area     float64
	Unit     string
	Err      error // area could not be measured
}

// AreaRows measures every area polygon of list, largest first. Without a
// georeference areas are in square canvas units.
func AreaRows(list annotation.List, g *georef.Georef) []AreaRow {
	var rows []AreaRow
	for _, p := range list.Polygons() {
		row := AreaRow{Label: p.Label, Category: p.Category, Color: p.Color}
		if row.Label == "" {
			row.Label = p.Category
		}
		if g != nil {
			row.Unit = "m²"
			row.Area, row.Err = g.Area(p)
		} else {
			row.Unit = "px²"
			row.Area = georef.CanvasArea(p)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Area > rows[j].Area })
	return rows
}

// FormatArea renders a row's area for display.
func (r AreaRow) FormatArea() string {
	if r.Err != nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f %s", r.Area, r.Unit)
}
