// Package background loads, fits and encodes the base map image shown under
// the annotations.
package background

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Source indicates where a background came from.
type Source int

const (
	SourceNone      Source = iota
	SourceSnapshot         // previously saved base map
	SourceSatellite        // fetched by site address
	SourceUpload           // user-chosen file
)

func (s Source) String() string {
	switch s {
	case SourceSnapshot:
		return "snapshot"
	case SourceSatellite:
		return "satellite"
	case SourceUpload:
		return "upload"
	default:
		return "none"
	}
}

// Background is a decoded base map fitted to the canvas.
type Background struct {
	Image  image.Image
	Source Source
	Path   string // file path for uploads, empty otherwise
}

// Load decodes the image file at path and fits it to a width x height canvas.
func Load(path string, width, height int) (*Background, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	bg, err := Decode(file, width, height)
	if err != nil {
		return nil, err
	}
	bg.Source = SourceUpload
	bg.Path = path
	return bg, nil
}

// Decode reads an encoded image (PNG, JPEG or TIFF) and fits it.
func Decode(r io.Reader, width, height int) (*Background, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Background{Image: Fit(img, width, height)}, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(data []byte, width, height int) (*Background, error) {
	return Decode(bytes.NewReader(data), width, height)
}

// Fit stretches img to exactly width x height. Images already that size are
// copied unscaled.
func Fit(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Width returns the image width in pixels.
func (b *Background) Width() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (b *Background) Height() int {
	if b == nil || b.Image == nil {
		return 0
	}
	return b.Image.Bounds().Dy()
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
