// Package panels provides the side panels of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/ui/canvas"
)

// SidePanel holds the settings and pattern panels in tabs.
type SidePanel struct {
	Settings *SettingsPanel
	Patterns *PatternsPanel

	tabs *container.AppTabs
}

// NewSidePanel creates the side panel.
func NewSidePanel(state *app.State, cvs *canvas.AtlasCanvas, onError func(error)) *SidePanel {
	sp := &SidePanel{
		Settings: NewSettingsPanel(state, cvs, onError),
		Patterns: NewPatternsPanel(state, onError),
	}
	sp.tabs = container.NewAppTabs(
		container.NewTabItem("Design", container.NewVScroll(sp.Settings.Container())),
		container.NewTabItem("Patterns", container.NewVScroll(sp.Patterns.Container())),
	)
	state.On(app.EventFaceSelected, func(any) { sp.tabs.SelectIndex(1) })
	return sp
}

// Container returns the tab container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.tabs
}
