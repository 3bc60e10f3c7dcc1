package panels

import (
	"errors"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/surface"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/ui/canvas"
)

// zoomChoices are the entries of the zoom selector.
var zoomChoices = []string{"fit", "50%", "100%", "150%", "200%", "400%"}

// SettingsPanel edits the box dimensions, resolution, margin, template,
// brush size, interaction mode and zoom.
type SettingsPanel struct {
	state  *app.State
	canvas *canvas.AtlasCanvas

	sizeX, sizeY, sizeZ *widget.Entry
	resolution          *widget.Entry
	margin              *widget.Entry
	brush               *widget.Entry
	templateSelect      *widget.Select
	modeRadio           *widget.RadioGroup
	zoomSelect          *widget.Select
	layoutInfo          *widget.Label

	onError func(error)

	container fyne.CanvasObject
}

// NewSettingsPanel creates the settings panel. onError receives rejected
// input.
func NewSettingsPanel(state *app.State, cvs *canvas.AtlasCanvas, onError func(error)) *SettingsPanel {
	sp := &SettingsPanel{state: state, canvas: cvs, onError: onError}
	sp.buildUI()
	sp.Refresh()

	state.On(app.EventLayoutChanged, func(any) { sp.Refresh() })
	state.On(app.EventProjectLoaded, func(any) { sp.Refresh() })
	state.On(app.EventTemplatesChanged, func(any) { sp.refreshTemplates() })
	return sp
}

func (sp *SettingsPanel) buildUI() {
	s := sp.state.Settings()
	sp.sizeX = numberEntry(s.Dims.X)
	sp.sizeY = numberEntry(s.Dims.Y)
	sp.sizeZ = numberEntry(s.Dims.Z)
	sp.resolution = numberEntry(s.Resolution)
	sp.margin = numberEntry(float64(s.Margin))
	sp.brush = numberEntry(s.BrushSize)

	sp.templateSelect = widget.NewSelect(unfold.ListTemplates(), func(name string) {
		if name == "" || name == sp.state.Settings().Template.Name {
			return
		}
		sp.report(sp.state.SetTemplateName(name))
	})

	labels := make([]string, 0, len(surface.Modes()))
	for _, m := range surface.Modes() {
		labels = append(labels, m.Label())
	}
	sp.modeRadio = widget.NewRadioGroup(labels, func(label string) {
		for _, m := range surface.Modes() {
			if m.Label() == label {
				sp.canvas.Controller().SetMode(m)
				return
			}
		}
	})
	sp.modeRadio.Horizontal = true
	sp.modeRadio.Required = true

	sp.zoomSelect = widget.NewSelect(zoomChoices, func(choice string) {
		z, err := surface.ParseZoom(choice)
		if err != nil {
			sp.report(err)
			return
		}
		if z != sp.canvas.Zoom() {
			sp.canvas.SetZoom(z)
		}
	})

	sp.layoutInfo = widget.NewLabel("")

	applyBtn := widget.NewButton("Apply", sp.apply)
	applyBrushBtn := widget.NewButton("Set", sp.applyBrush)
	clearMaskBtn := widget.NewButton("Clear Paint", sp.state.ClearMask)

	form := widget.NewForm(
		widget.NewFormItem("Size X", sp.sizeX),
		widget.NewFormItem("Size Y", sp.sizeY),
		widget.NewFormItem("Size Z", sp.sizeZ),
		widget.NewFormItem("Pixels / unit", sp.resolution),
		widget.NewFormItem("Margin (px)", sp.margin),
	)

	sp.container = container.NewVBox(
		widget.NewCard("Box", "", container.NewVBox(form, applyBtn)),
		widget.NewCard("Template", "", container.NewVBox(sp.templateSelect, sp.layoutInfo)),
		widget.NewCard("Brush", "", container.NewVBox(
			sp.modeRadio,
			container.NewBorder(nil, nil, widget.NewLabel("Radius"), applyBrushBtn, sp.brush),
			clearMaskBtn,
		)),
		widget.NewCard("View", "", container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Zoom"), nil, sp.zoomSelect),
		)),
	)
}

// Container returns the panel's root object.
func (sp *SettingsPanel) Container() fyne.CanvasObject {
	return sp.container
}

// apply validates the box fields and applies them in one step.
func (sp *SettingsPanel) apply() {
	next := sp.state.Settings()
	var errs []error
	var err error
	if next.Dims.X, err = parseFloatField("size X", sp.sizeX); err != nil {
		errs = append(errs, err)
	}
	if next.Dims.Y, err = parseFloatField("size Y", sp.sizeY); err != nil {
		errs = append(errs, err)
	}
	if next.Dims.Z, err = parseFloatField("size Z", sp.sizeZ); err != nil {
		errs = append(errs, err)
	}
	if next.Resolution, err = parseFloatField("resolution", sp.resolution); err != nil {
		errs = append(errs, err)
	}
	if next.Margin, err = parseIntField("margin", sp.margin); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		sp.report(errors.Join(errs...))
		return
	}
	sp.report(sp.state.ApplySettings(next))
}

func (sp *SettingsPanel) applyBrush() {
	size, err := parseFloatField("brush radius", sp.brush)
	if err == nil {
		err = sp.state.SetBrushSize(size)
	}
	sp.report(err)
}

func (sp *SettingsPanel) report(err error) {
	if err == nil {
		return
	}
	if sp.onError != nil {
		sp.onError(err)
	}
	sp.Refresh()
}

func (sp *SettingsPanel) refreshTemplates() {
	sp.templateSelect.Options = unfold.ListTemplates()
	sp.templateSelect.Refresh()
}

// Refresh copies the current settings into the fields.
func (sp *SettingsPanel) Refresh() {
	s := sp.state.Settings()
	sp.sizeX.SetText(formatFloat(s.Dims.X))
	sp.sizeY.SetText(formatFloat(s.Dims.Y))
	sp.sizeZ.SetText(formatFloat(s.Dims.Z))
	sp.resolution.SetText(formatFloat(s.Resolution))
	sp.margin.SetText(strconv.Itoa(s.Margin))
	sp.brush.SetText(formatFloat(s.BrushSize))

	sp.refreshTemplates()
	if _, ok := unfold.Lookup(s.Template.Name); ok {
		sp.templateSelect.SetSelected(s.Template.Name)
	}
	sp.modeRadio.SetSelected(sp.canvas.Controller().Mode().Label())
	sp.zoomSelect.SetSelected(sp.canvas.Zoom().String())

	if l := sp.state.Layout(); l != nil {
		sp.layoutInfo.SetText(layoutSummary(l))
	}
}

func layoutSummary(l *unfold.Layout) string {
	return strconv.Itoa(l.Width) + " x " + strconv.Itoa(l.Height) + " px, " +
		strconv.Itoa(l.Cols) + " x " + strconv.Itoa(l.Rows) + " cells"
}
