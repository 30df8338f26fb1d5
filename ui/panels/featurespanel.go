package panels

import (
	"site-mapper/internal/annotation"
	"site-mapper/internal/app"
	"site-mapper/internal/editor"
	"site-mapper/pkg/colorutil"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// FeaturesPanel is the feature icon palette. Choosing an icon places it at
// the center of the visible map.
type FeaturesPanel struct {
	session   *app.Session
	window    fyne.Window
	container fyne.CanvasObject
}

// NewFeaturesPanel creates a new features panel.
func NewFeaturesPanel(session *app.Session) *FeaturesPanel {
	fp := &FeaturesPanel{session: session}

	rows := container.NewVBox(
		widget.NewLabelWithStyle("Place feature", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	for _, c := range annotation.IconCategories {
		c := c
		rows.Add(container.NewBorder(nil, nil, swatch(c.Color), nil,
			widget.NewButton(c.Label, func() { fp.place(c.ID) })))
	}
	fp.container = container.NewVScroll(rows)
	return fp
}

// Container returns the panel container.
func (fp *FeaturesPanel) Container() fyne.CanvasObject {
	return fp.container
}

func (fp *FeaturesPanel) place(category string) {
	if err := fp.session.Editor.Dispatch(editor.PlaceIcon{Category: category}); err != nil && fp.window != nil {
		dialog.ShowError(err, fp.window)
	}
}

// swatch returns a small filled circle in the given color.
func swatch(hex string) fyne.CanvasObject {
	c, err := colorutil.ParseHex(hex)
	if err != nil {
		c = colorutil.Black
	}
	dot := fynecanvas.NewCircle(c)
	dot.StrokeColor = colorutil.Darken(c, 0.3)
	dot.StrokeWidth = 1
	return container.NewGridWrap(fyne.NewSize(16, 16), dot)
}
