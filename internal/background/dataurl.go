package background

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// ErrNotDataURL is returned for strings that are not base64 data URLs.
var ErrNotDataURL = errors.New("not a base64 data URL")

const pngPrefix = "data:image/png;base64,"

// EncodeDataURL encodes img as a PNG data URL, the form the host stores as
// base_map_data.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL decodes a "data:image/<type>;base64,..." string. Any image
// type registered with the image package is accepted.
func DecodeDataURL(s string) (image.Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
		return nil, ErrNotDataURL
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// FromDataURL decodes a saved snapshot and fits it to the canvas.
func FromDataURL(s string, width, height int) (*Background, error) {
	img, err := DecodeDataURL(s)
	if err != nil {
		return nil, err
	}
	return &Background{Image: Fit(img, width, height), Source: SourceSnapshot}, nil
}
