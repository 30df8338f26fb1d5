package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#EF4444")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF}, c)

	c, err = ParseHex("f00")
	require.NoError(t, err)
	assert.Equal(t, red, c)

	c, err = ParseHex("#00000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)
}

func TestParseHex_Invalid(t *testing.T) {
	for _, s := range []string{"", "#12", "#GGGGGG", "red"} {
		_, err := ParseHex(s)
		assert.Error(t, err, s)
	}
	assert.Equal(t, Black, MustHex("nope"))
}

func TestWithAlphaAndDarken(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, A: 76}, WithAlpha(red, 0.3))
	assert.Equal(t, uint8(255), WithAlpha(red, 4).A)
	assert.Equal(t, color.RGBA{R: 127, A: 255}, Darken(red, 0.5))
}
