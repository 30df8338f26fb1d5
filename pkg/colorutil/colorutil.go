// Package colorutil provides shared color utilities for the site map editor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	GridLine  = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	Selection = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// ParseHex parses "#RRGGBB", "#RGB" or "#RRGGBBAA" (leading '#' optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustHex is like ParseHex but falls back to Black on malformed input.
func MustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		return Black
	}
	return c
}

// WithAlpha returns the color with its alpha replaced by a (0.0 - 1.0).
// The result is non-premultiplied, as expected by gg.SetRGBA255.
func WithAlpha(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a * 255)}
}

// Darken reduces the brightness of a color.
func Darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * (1 - factor)),
		G: uint8(float64(c.G) * (1 - factor)),
		B: uint8(float64(c.B) * (1 - factor)),
		A: c.A,
	}
}
