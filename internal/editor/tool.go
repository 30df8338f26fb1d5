package editor

// Tool is the active interaction mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPen
	ToolText
	ToolCircle
	ToolRectangle
	ToolPolygon
)

var toolNames = [...]string{
	ToolSelect:    "select",
	ToolPen:       "pen",
	ToolText:      "text",
	ToolCircle:    "circle",
	ToolRectangle: "rectangle",
	ToolPolygon:   "polygon",
}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}
