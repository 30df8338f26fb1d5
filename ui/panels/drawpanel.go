package panels

import (
	"site-mapper/internal/annotation"
	"site-mapper/internal/app"
	"site-mapper/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// strokeColors are the colors offered for freehand annotations.
var strokeColors = []struct {
	Name string
	Hex  string
}{
	{"Red", "#FF0000"},
	{"Blue", "#0000FF"},
	{"Green", "#00AA00"},
	{"Orange", "#FFA500"},
	{"Yellow", "#FFFF00"},
	{"Black", "#000000"},
	{"White", "#FFFFFF"},
}

// drawTools are the tools selectable from the radio group, in order.
var drawTools = []editor.Tool{
	editor.ToolSelect,
	editor.ToolPen,
	editor.ToolText,
	editor.ToolCircle,
	editor.ToolRectangle,
}

var toolLabels = map[editor.Tool]string{
	editor.ToolSelect:    "Select / Move",
	editor.ToolPen:       "Pen",
	editor.ToolText:      "Text",
	editor.ToolCircle:    "Circle",
	editor.ToolRectangle: "Rectangle",
}

// DrawPanel selects drawing tools, area categories and stroke color.
type DrawPanel struct {
	session   *app.Session
	window    fyne.Window
	container fyne.CanvasObject

	toolGroup  *widget.RadioGroup
	areaStatus *widget.Label
	gridCheck  *widget.Check

	syncing bool
}

// NewDrawPanel creates a new draw panel.
func NewDrawPanel(session *app.Session) *DrawPanel {
	dp := &DrawPanel{session: session}

	labels := make([]string, len(drawTools))
	for i, t := range drawTools {
		labels[i] = toolLabels[t]
	}
	dp.toolGroup = widget.NewRadioGroup(labels, dp.onToolSelected)
	dp.toolGroup.Required = false
	dp.toolGroup.SetSelected(toolLabels[editor.ToolSelect])

	areaButtons := container.NewVBox()
	for _, c := range annotation.AreaCategories {
		c := c
		areaButtons.Add(widget.NewButton(c.Label, func() { dp.onAreaSelected(c) }))
	}
	dp.areaStatus = widget.NewLabel("Double-click to close an area")
	dp.areaStatus.Wrapping = fyne.TextWrapWord

	colorNames := make([]string, len(strokeColors))
	for i, c := range strokeColors {
		colorNames[i] = c.Name
	}
	colorSelect := widget.NewSelect(colorNames, dp.onColorSelected)
	colorSelect.SetSelected(strokeColors[0].Name)

	dp.gridCheck = widget.NewCheck("Show grid", func(on bool) {
		if dp.syncing || on == session.Editor.GridVisible() {
			return
		}
		_ = session.Editor.Dispatch(editor.ToggleGrid{})
	})

	dp.container = container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Tools", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		dp.toolGroup,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Areas", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		areaButtons,
		dp.areaStatus,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Style", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Color"), nil, colorSelect),
		dp.gridCheck,
	))

	session.Editor.On(editor.EventToolChanged, func(interface{}) { dp.syncTool() })
	session.Editor.On(editor.EventRedraw, func(interface{}) { dp.syncGrid() })

	return dp
}

// Container returns the panel container.
func (dp *DrawPanel) Container() fyne.CanvasObject {
	return dp.container
}

func (dp *DrawPanel) onToolSelected(label string) {
	if dp.syncing || label == "" {
		return
	}
	for _, t := range drawTools {
		if toolLabels[t] == label {
			dp.dispatch(editor.SelectTool{Tool: t})
			return
		}
	}
}

func (dp *DrawPanel) onAreaSelected(c annotation.AreaCategory) {
	dp.dispatch(editor.SelectTool{Tool: editor.ToolPolygon, Category: c.ID})
	dp.areaStatus.SetText("Drawing " + c.Label + ": click to add points, double-click to finish")
}

func (dp *DrawPanel) onColorSelected(name string) {
	for _, c := range strokeColors {
		if c.Name == name {
			dp.dispatch(editor.SetColor{Color: c.Hex})
			return
		}
	}
}

func (dp *DrawPanel) dispatch(ev editor.Event) {
	if err := dp.session.Editor.Dispatch(ev); err != nil && dp.window != nil {
		dialog.ShowError(err, dp.window)
	}
}

// syncTool reflects tool changes made by the editor (Escape, polygon
// completion) in the radio group.
func (dp *DrawPanel) syncTool() {
	tool, _ := dp.session.Editor.Tool()
	dp.syncing = true
	defer func() { dp.syncing = false }()

	if tool == editor.ToolPolygon {
		dp.toolGroup.SetSelected("")
		return
	}
	dp.toolGroup.SetSelected(toolLabels[tool])
	dp.areaStatus.SetText("Double-click to close an area")
}

func (dp *DrawPanel) syncGrid() {
	dp.syncing = true
	dp.gridCheck.SetChecked(dp.session.Editor.GridVisible())
	dp.syncing = false
}
