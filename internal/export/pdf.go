package export

import (
	"fmt"
	"image"
	"io"
	"time"

	"site-mapper/internal/annotation"
	"site-mapper/internal/georef"
	"site-mapper/pkg/colorutil"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in points (A4).
const (
	margin     = 40.0
	rowHeight  = 18.0
	swatchSize = 11.0
)

// Document is the content of a PDF export.
type Document struct {
	Title       string
	SiteName    string
	SiteAddress string
	Generated   time.Time
	Image       image.Image
	Annotations annotation.List
	Legend      []annotation.LegendItem
	Georef      *georef.Georef
}

// WritePDF writes doc as a PDF.
func WritePDF(w io.Writer, doc Document) error {
	pdf, err := buildPDF(doc)
	if err != nil {
		return err
	}
	if err := pdf.Write(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf    *gopdf.GoPdf
	y      float64
	width  float64
	height float64
}

func buildPDF(doc Document) (*gopdf.GoPdf, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData("regular", goregular.TTF); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	if err := pdf.AddTTFFontData("bold", gobold.TTF); err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	pw := &pdfWriter{pdf: pdf, width: gopdf.PageSizeA4.W, height: gopdf.PageSizeA4.H}
	pw.newPage()

	if err := pw.header(doc); err != nil {
		return nil, err
	}
	if doc.Image != nil {
		if err := pw.image(doc.Image); err != nil {
			return nil, err
		}
	}
	if err := pw.legend(doc.Legend); err != nil {
		return nil, err
	}
	if err := pw.areas(AreaRows(doc.Annotations, doc.Georef)); err != nil {
		return nil, err
	}
	return pdf, nil
}

func (pw *pdfWriter) newPage() {
	pw.pdf.AddPage()
	pw.y = margin
}

// ensure starts a new page unless h points fit below the cursor.
func (pw *pdfWriter) ensure(h float64) {
	if pw.y+h > pw.height-margin {
		pw.newPage()
	}
}

func (pw *pdfWriter) text(font string, size float64, x float64, s string) error {
	if err := pw.pdf.SetFont(font, "", size); err != nil {
		return err
	}
	pw.pdf.SetXY(x, pw.y)
	return pw.pdf.Cell(nil, s)
}

func (pw *pdfWriter) header(doc Document) error {
	title := doc.Title
	if title == "" {
		title = "Site Map"
	}
	pw.pdf.SetTextColor(0, 0, 0)
	if err := pw.text("bold", 18, margin, title); err != nil {
		return err
	}
	pw.y += 26

	lines := []string{doc.SiteName, doc.SiteAddress}
	if !doc.Generated.IsZero() {
		lines = append(lines, "Generated "+doc.Generated.Format("2006-01-02 15:04 MST"))
	}
	for _, l := range lines {
		if l == "" {
			continue
		}
		if err := pw.text("regular", 11, margin, l); err != nil {
			return err
		}
		pw.y += 15
	}
	pw.y += 10
	return nil
}

// image draws the scene scaled to the content width, or to the remaining
// page height when that is smaller.
func (pw *pdfWriter) image(img image.Image) error {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	maxW := pw.width - 2*margin
	maxH := pw.height - margin - pw.y
	scale := maxW / float64(b.Dx())
	if h := float64(b.Dy()) * scale; h > maxH {
		scale = maxH / float64(b.Dy())
	}
	w, h := float64(b.Dx())*scale, float64(b.Dy())*scale

	if err := pw.pdf.ImageFrom(img, margin, pw.y, &gopdf.Rect{W: w, H: h}); err != nil {
		return fmt.Errorf("failed to embed map image: %w", err)
	}
	pw.pdf.SetStrokeColor(120, 120, 120)
	pw.pdf.SetLineWidth(0.5)
	pw.pdf.RectFromUpperLeftWithStyle(margin, pw.y, w, h, "D")
	pw.y += h + 20
	return nil
}

func (pw *pdfWriter) section(title string) error {
	pw.ensure(24 + rowHeight)
	if err := pw.text("bold", 13, margin, title); err != nil {
		return err
	}
	pw.y += 22
	return nil
}

func (pw *pdfWriter) swatch(hex string) {
	c := colorutil.MustHex(hex)
	pw.pdf.SetFillColor(c.R, c.G, c.B)
	pw.pdf.SetStrokeColor(60, 60, 60)
	pw.pdf.SetLineWidth(0.3)
	pw.pdf.RectFromUpperLeftWithStyle(margin, pw.y+1, swatchSize, swatchSize, "FD")
}

// legend lists every category; it continues onto new pages as needed.
func (pw *pdfWriter) legend(items []annotation.LegendItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := pw.section("Legend"); err != nil {
		return err
	}
	for _, it := range items {
		pw.ensure(rowHeight)
		pw.swatch(it.Color)
		if err := pw.text("regular", 10, margin+swatchSize+8, it.Label); err != nil {
			return err
		}
		kind := "Feature"
		if it.Kind == annotation.LegendArea {
			kind = "Area"
		}
		if err := pw.text("regular", 9, margin+260, kind); err != nil {
			return err
		}
		pw.y += rowHeight
	}
	pw.y += 10
	return nil
}

func (pw *pdfWriter) areas(rows []AreaRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := pw.section("Areas"); err != nil {
		return err
	}
	for _, r := range rows {
		pw.ensure(rowHeight)
		pw.swatch(r.Color)
		if err := pw.text("regular", 10, margin+swatchSize+8, r.Label); err != nil {
			return err
		}
		if err := pw.text("regular", 10, margin+260, r.FormatArea()); err != nil {
			return err
		}
		pw.y += rowHeight
	}
	return nil
}
