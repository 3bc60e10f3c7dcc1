package panels

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// PatternsPanel edits the pattern stack of the selected face: add, remove,
// reorder, change parameters, clear.
type PatternsPanel struct {
	state *app.State

	faceLabel  *widget.Label
	kindSelect *widget.Select
	list       *widget.List
	items      []pattern.FacePattern
	selected   int

	opSelect   *widget.Select
	fillSelect *widget.Select
	params     paramEntries

	onError func(error)

	container fyne.CanvasObject
}

// paramEntries holds one entry per pattern parameter.
type paramEntries struct {
	lineWidth, bandWidth, borderWidth *widget.Entry
	padSize, padGap, cornerRadius     *widget.Entry
}

// NewPatternsPanel creates the pattern editor. onError receives rejected
// edits.
func NewPatternsPanel(state *app.State, onError func(error)) *PatternsPanel {
	pp := &PatternsPanel{state: state, selected: -1, onError: onError}
	pp.buildUI()
	pp.Refresh()

	state.On(app.EventFaceSelected, func(any) { pp.Refresh() })
	state.On(app.EventPatternsChanged, func(any) { pp.Refresh() })
	state.On(app.EventLayoutChanged, func(any) { pp.Refresh() })
	state.On(app.EventProjectLoaded, func(any) { pp.Refresh() })
	return pp
}

func (pp *PatternsPanel) buildUI() {
	pp.faceLabel = widget.NewLabel("")

	kinds := make([]string, 0, len(pattern.Kinds()))
	for _, k := range pattern.Kinds() {
		kinds = append(kinds, string(k))
	}
	pp.kindSelect = widget.NewSelect(kinds, nil)
	pp.kindSelect.SetSelected(kinds[0])
	addBtn := widget.NewButton("Add", pp.add)

	pp.list = widget.NewList(
		func() int { return len(pp.items) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(pp.items) {
				obj.(*widget.Label).SetText(describe(pp.items[id]))
			}
		},
	)
	pp.list.OnSelected = func(id widget.ListItemID) {
		pp.selected = id
		pp.showSelected()
	}
	pp.list.OnUnselected = func(widget.ListItemID) {
		pp.selected = -1
	}

	upBtn := widget.NewButton("Up", func() { pp.move(-1) })
	downBtn := widget.NewButton("Down", func() { pp.move(1) })
	removeBtn := widget.NewButton("Remove", pp.remove)
	clearBtn := widget.NewButton("Clear Face", pp.clearFace)

	pp.opSelect = widget.NewSelect([]string{string(pattern.OpPaint), string(pattern.OpErase)}, nil)
	pp.fillSelect = widget.NewSelect([]string{string(pattern.FillInside), string(pattern.FillOutside)}, nil)
	d := pattern.DefaultParams()
	pp.params = paramEntries{
		lineWidth:    numberEntry(d.LineWidth),
		bandWidth:    numberEntry(d.BandWidth),
		borderWidth:  numberEntry(d.BorderWidth),
		padSize:      numberEntry(d.PadSize),
		padGap:       numberEntry(d.PadGap),
		cornerRadius: numberEntry(d.CornerRadius),
	}
	applyBtn := widget.NewButton("Apply", pp.applyEdit)

	editor := widget.NewForm(
		widget.NewFormItem("Operation", pp.opSelect),
		widget.NewFormItem("Fill", pp.fillSelect),
		widget.NewFormItem("Line width", pp.params.lineWidth),
		widget.NewFormItem("Band width", pp.params.bandWidth),
		widget.NewFormItem("Border width", pp.params.borderWidth),
		widget.NewFormItem("Pad size", pp.params.padSize),
		widget.NewFormItem("Pad gap", pp.params.padGap),
		widget.NewFormItem("Corner radius", pp.params.cornerRadius),
	)

	listArea := container.NewGridWrap(fyne.NewSize(260, 160), pp.list)
	pp.container = container.NewVBox(
		pp.faceLabel,
		container.NewBorder(nil, nil, nil, addBtn, pp.kindSelect),
		listArea,
		container.NewHBox(upBtn, downBtn, removeBtn, clearBtn),
		widget.NewCard("Selected pattern", "", container.NewVBox(editor, applyBtn)),
	)
}

// Container returns the panel's root object.
func (pp *PatternsPanel) Container() fyne.CanvasObject {
	return pp.container
}

func describe(fp pattern.FacePattern) string {
	s := fmt.Sprintf("%s  %s  %s/%s", fp.ID, fp.Kind, fp.Fill, fp.Op)
	if fp.Fill == pattern.FillOutside && fp.Op == pattern.OpErase && fp.Kind.Approximate() {
		s += " (approx.)"
	}
	return s
}

func (pp *PatternsPanel) face() (unfold.Face, bool) {
	f := pp.state.CurrentFace()
	return f, f != unfold.FaceNone
}

func (pp *PatternsPanel) current() (pattern.FacePattern, bool) {
	if pp.selected < 0 || pp.selected >= len(pp.items) {
		return pattern.FacePattern{}, false
	}
	return pp.items[pp.selected], true
}

func (pp *PatternsPanel) add() {
	face, ok := pp.face()
	if !ok {
		pp.report(errors.New("select a face first"))
		return
	}
	_, err := pp.state.AddPattern(face, pattern.Kind(pp.kindSelect.Selected))
	pp.report(err)
}

func (pp *PatternsPanel) move(delta int) {
	face, okFace := pp.face()
	fp, ok := pp.current()
	if !okFace || !ok {
		return
	}
	moved, err := pp.state.MovePattern(face, fp.ID, delta)
	if err != nil {
		pp.report(err)
		return
	}
	if moved {
		pp.selectID(fp.ID)
	}
}

func (pp *PatternsPanel) remove() {
	face, okFace := pp.face()
	fp, ok := pp.current()
	if !okFace || !ok {
		return
	}
	_, err := pp.state.RemovePattern(face, fp.ID)
	pp.report(err)
}

func (pp *PatternsPanel) clearFace() {
	if face, ok := pp.face(); ok {
		pp.report(pp.state.ClearFacePatterns(face))
	}
}

// applyEdit writes the editor fields back into the selected pattern.
func (pp *PatternsPanel) applyEdit() {
	face, okFace := pp.face()
	fp, ok := pp.current()
	if !okFace || !ok {
		return
	}
	p, err := pp.params.read()
	if err != nil {
		pp.report(err)
		return
	}
	fp.Params = p
	fp.Op = pattern.Op(pp.opSelect.Selected)
	fp.Fill = pattern.Fill(pp.fillSelect.Selected)
	if _, err := pp.state.UpdatePattern(face, fp); err != nil {
		pp.report(err)
		return
	}
	pp.selectID(fp.ID)
}

func (e paramEntries) read() (pattern.Params, error) {
	var p pattern.Params
	var errs []error
	for _, f := range []struct {
		name  string
		entry *widget.Entry
		dst   *float64
	}{
		{"line width", e.lineWidth, &p.LineWidth},
		{"band width", e.bandWidth, &p.BandWidth},
		{"border width", e.borderWidth, &p.BorderWidth},
		{"pad size", e.padSize, &p.PadSize},
		{"pad gap", e.padGap, &p.PadGap},
		{"corner radius", e.cornerRadius, &p.CornerRadius},
	} {
		v, err := parseFloatField(f.name, f.entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*f.dst = v
	}
	return p, errors.Join(errs...)
}

func (e paramEntries) show(p pattern.Params) {
	e.lineWidth.SetText(formatFloat(p.LineWidth))
	e.bandWidth.SetText(formatFloat(p.BandWidth))
	e.borderWidth.SetText(formatFloat(p.BorderWidth))
	e.padSize.SetText(formatFloat(p.PadSize))
	e.padGap.SetText(formatFloat(p.PadGap))
	e.cornerRadius.SetText(formatFloat(p.CornerRadius))
}

func (pp *PatternsPanel) selectID(id string) {
	for i, fp := range pp.items {
		if fp.ID == id {
			pp.list.Select(i)
			return
		}
	}
}

func (pp *PatternsPanel) showSelected() {
	fp, ok := pp.current()
	if !ok {
		return
	}
	pp.opSelect.SetSelected(string(fp.Op))
	pp.fillSelect.SetSelected(string(fp.Fill))
	pp.params.show(fp.Params)
}

func (pp *PatternsPanel) report(err error) {
	if err != nil && pp.onError != nil {
		pp.onError(err)
	}
}

// Refresh reloads the face's stack, keeping the selected pattern when it
// still exists.
func (pp *PatternsPanel) Refresh() {
	var keep string
	if fp, ok := pp.current(); ok {
		keep = fp.ID
	}

	face, ok := pp.face()
	if !ok {
		pp.faceLabel.SetText("No face selected. Use Select face mode on the atlas.")
		pp.items = nil
	} else {
		pp.faceLabel.SetText("Face " + string(face))
		pp.items = pp.state.FacePatterns(face)
	}
	pp.selected = -1
	pp.list.UnselectAll()
	pp.list.Refresh()
	if keep != "" {
		pp.selectID(keep)
	}
}

// Items returns the patterns currently listed.
func (pp *PatternsPanel) Items() []pattern.FacePattern {
	return pp.items
}
