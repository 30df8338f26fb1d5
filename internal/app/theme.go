package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// SiteMapperTheme tints the default theme for map editing.
type SiteMapperTheme struct{}

var _ fyne.Theme = (*SiteMapperTheme)(nil)

func (t *SiteMapperTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xF5, G: 0x9E, B: 0x0B, A: 0x80}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *SiteMapperTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *SiteMapperTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *SiteMapperTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	default:
		return theme.DefaultTheme().Size(name)
	}
}
