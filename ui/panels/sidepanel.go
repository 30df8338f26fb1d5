// Package panels provides UI panels for the application.
package panels

import (
	"site-mapper/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	session   *app.Session
	container *container.AppTabs

	// Tab content
	drawPanel        *DrawPanel
	featuresPanel    *FeaturesPanel
	annotationsPanel *AnnotationsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(session *app.Session) *SidePanel {
	sp := &SidePanel{session: session}

	sp.drawPanel = NewDrawPanel(session)
	sp.featuresPanel = NewFeaturesPanel(session)
	sp.annotationsPanel = NewAnnotationsPanel(session)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Draw", sp.drawPanel.Container()),
		container.NewTabItem("Features", sp.featuresPanel.Container()),
		container.NewTabItem("Annotations", sp.annotationsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.drawPanel.window = w
	sp.featuresPanel.window = w
	sp.annotationsPanel.window = w
}
