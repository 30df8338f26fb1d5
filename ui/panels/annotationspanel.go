package panels

import (
	"fmt"

	"site-mapper/internal/annotation"
	"site-mapper/internal/app"
	"site-mapper/internal/editor"
	"site-mapper/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// AnnotationsPanel lists the scene, selects and deletes annotations.
type AnnotationsPanel struct {
	session   *app.Session
	window    fyne.Window
	container fyne.CanvasObject

	list      *widget.List
	items     annotation.List
	areaLabel *widget.Label
	syncing   bool
}

// NewAnnotationsPanel creates a new annotations panel.
func NewAnnotationsPanel(session *app.Session) *AnnotationsPanel {
	ap := &AnnotationsPanel{session: session}

	ap.list = widget.NewList(
		func() int { return len(ap.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ap.items) {
				obj.(*widget.Label).SetText(describe(ap.items[id]))
			}
		},
	)
	ap.list.OnSelected = func(id widget.ListItemID) {
		if ap.syncing || id >= len(ap.items) {
			return
		}
		_ = session.Editor.Dispatch(editor.Select{ID: ap.items[id].AnnotationID()})
	}

	deleteBtn := widget.NewButton("Delete Selected", func() {
		_ = session.Editor.Dispatch(editor.DeleteSelected{})
	})
	clearBtn := widget.NewButton("Clear All", ap.onClearAll)
	ap.areaLabel = widget.NewLabel("")
	ap.areaLabel.Wrapping = fyne.TextWrapWord

	ap.container = container.NewBorder(
		nil,
		container.NewVBox(ap.areaLabel, container.NewGridWithColumns(2, deleteBtn, clearBtn)),
		nil, nil,
		ap.list,
	)

	session.Editor.On(editor.EventSceneChanged, func(interface{}) { ap.sync() })
	session.Editor.On(editor.EventSelectionChanged, func(interface{}) { ap.syncSelection() })
	ap.sync()

	return ap
}

// Container returns the panel container.
func (ap *AnnotationsPanel) Container() fyne.CanvasObject {
	return ap.container
}

func (ap *AnnotationsPanel) onClearAll() {
	if len(ap.items) == 0 {
		return
	}
	confirm := func(ok bool) {
		if ok {
			_ = ap.session.Editor.Dispatch(editor.ClearAll{})
		}
	}
	if ap.window == nil {
		return
	}
	dialog.ShowConfirm("Clear All",
		fmt.Sprintf("Remove all %d annotations? This can be undone.", len(ap.items)),
		confirm, ap.window)
}

func (ap *AnnotationsPanel) sync() {
	ap.items = ap.session.Editor.Annotations()
	ap.list.Refresh()
	ap.syncSelection()

	rows := export.AreaRows(ap.items, ap.session.Georef())
	total := 0.0
	unit := ""
	for _, r := range rows {
		if r.Err == nil {
			total += r.Area
			unit = r.Unit
		}
	}
	if len(rows) == 0 {
		ap.areaLabel.SetText(fmt.Sprintf("%d annotations", len(ap.items)))
		return
	}
	ap.areaLabel.SetText(fmt.Sprintf("%d annotations, %d areas totalling %.1f %s",
		len(ap.items), len(rows), total, unit))
}

func (ap *AnnotationsPanel) syncSelection() {
	ap.syncing = true
	defer func() { ap.syncing = false }()

	selected := ap.session.Editor.Selected()
	for i, a := range ap.items {
		if a.AnnotationID() == selected {
			ap.list.Select(i)
			return
		}
	}
	ap.list.UnselectAll()
}

// describe returns a one-line summary of an annotation.
func describe(a annotation.Annotation) string {
	switch v := a.(type) {
	case annotation.Line:
		return fmt.Sprintf("Line (%d points)", len(v.Points))
	case annotation.Circle:
		return fmt.Sprintf("Circle r=%.0f", v.Radius)
	case annotation.Rectangle:
		n := v.Bounds()
		return fmt.Sprintf("Rectangle %.0f×%.0f", n.Width, n.Height)
	case annotation.Polygon:
		return "Area: " + v.Label
	case annotation.FeatureIcon:
		return "Feature: " + v.Label
	case annotation.Text:
		return fmt.Sprintf("Text %q", v.Content)
	}
	return string(a.Kind())
}
