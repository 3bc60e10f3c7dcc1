// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/surface"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/internal/version"
	"github.com/squall321/SmartTwinCluster-sub006/ui/canvas"
	"github.com/squall321/SmartTwinCluster-sub006/ui/panels"
	"github.com/squall321/SmartTwinCluster-sub006/ui/prefs"
	"github.com/squall321/SmartTwinCluster-sub006/ui/preview"
)

const (
	appTitle       = "Box Net Designer"
	projectExt     = ".boxnet"
	templateFilter = ".yaml"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	ctrl      *surface.Controller
	canvas    *canvas.AtlasCanvas
	preview   *preview.View
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	cancel context.CancelFunc
}

// New creates the main window for state. The preview starts rendering when
// the window is shown and stops when it closes.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		Window: fyneApp.NewWindow(appTitle),
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.ctrl = surface.NewController(surface.Config{
		Mask:           state.Mask(),
		Patterns:       state.PatternLayer(),
		OnEdited:       state.MaskEdited,
		OnFaceSelected: state.SelectFace,
	})
	mw.ctrl.SetLayout(state.Layout())
	mw.ctrl.SetBrushSize(state.Settings().BrushSize)

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.updateFooter()
	mw.updateTitle()

	mw.SetCloseIntercept(mw.onClose)
	return mw
}

// Controller returns the atlas controller.
func (mw *MainWindow) Controller() *surface.Controller {
	return mw.ctrl
}

// Canvas returns the atlas view.
func (mw *MainWindow) Canvas() *canvas.AtlasCanvas {
	return mw.canvas
}

// Preview returns the 3D preview widget.
func (mw *MainWindow) Preview() *preview.View {
	return mw.preview
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAtlasCanvas(mw.ctrl)
	mw.canvas.OnZoomChange(func(z surface.Zoom) {
		mw.prefs.SetString(prefs.KeyZoom, z.String())
		mw.updateStatus("Zoom: " + z.String())
	})
	mw.preview = preview.NewView(mw.state)
	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas, mw.showError)
	mw.statusBar = widget.NewLabel("Ready")

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	views := container.NewHSplit(canvasArea, mw.preview)
	views.SetOffset(0.7)

	split := container.NewHSplit(mw.sidePanel.Container(), views)
	split.SetOffset(0.22)

	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	))
	mw.Resize(fyne.NewSize(1400, 820))
}

// createToolbar creates the toolbar with zoom and mode controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("Fit", mw.canvas.FitToWindow),
		widget.NewButton("1:1", func() { mw.canvas.SetZoom(surface.FixedZoom(1)) }),
		widget.NewSeparator(),
		widget.NewButton("Paint", func() { mw.setMode(surface.ModePaint) }),
		widget.NewButton("Erase", func() { mw.setMode(surface.ModeErase) }),
		widget.NewButton("Select Face", func() { mw.setMode(surface.ModePatternSelect) }),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Project", mw.onSaveProject),
		fyne.NewMenuItem("Save Project As...", mw.onSaveProjectAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Load Templates...", mw.onLoadTemplates),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Clear Paint", mw.state.ClearMask),
		fyne.NewMenuItem("Clear Face Patterns", mw.onClearFacePatterns),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitToWindow),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(surface.FixedZoom(1)) }),
	)

	modeItems := make([]*fyne.MenuItem, 0, len(surface.Modes()))
	for _, m := range surface.Modes() {
		modeItems = append(modeItems, fyne.NewMenuItem(m.Label(), func() { mw.setMode(m) }))
	}
	modeMenu := fyne.NewMenu("Mode", modeItems...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, modeMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventLayoutChanged, func(data any) {
		if l, ok := data.(*unfold.Layout); ok {
			mw.ctrl.SetLayout(l)
			mw.canvas.Refresh()
			mw.updateStatus(fmt.Sprintf("Layout %s: %d x %d px", l.Template.Name, l.Width, l.Height))
		}
		mw.rememberSettings()
		mw.updateFooter()
	})

	mw.state.On(app.EventMaskEdited, func(any) {
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventPatternsChanged, func(any) {
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventFaceSelected, func(data any) {
		face, _ := data.(unfold.Face)
		mw.ctrl.SetCurrentFace(face)
		mw.canvas.Refresh()
		if face != unfold.FaceNone {
			mw.updateStatus("Selected face " + string(face))
		}
	})

	mw.state.On(app.EventBrushChanged, func(data any) {
		if size, ok := data.(float64); ok {
			mw.ctrl.SetBrushSize(size)
		}
		mw.rememberSettings()
		mw.updateFooter()
	})

	mw.state.On(app.EventModified, func(any) {
		mw.updateTitle()
	})

	mw.state.On(app.EventProjectLoaded, func(data any) {
		mw.updateTitle()
		if path, _ := data.(string); path != "" {
			mw.updateStatus("Project loaded: " + path)
		}
	})

	mw.state.On(app.EventProjectSaved, func(data any) {
		mw.updateTitle()
		if path, ok := data.(string); ok {
			mw.updateStatus("Project saved: " + path)
		}
	})

	mw.state.On(app.EventTemplatesChanged, func(data any) {
		if names, ok := data.([]string); ok {
			mw.updateStatus("Templates loaded: " + strings.Join(names, ", "))
		}
	})
}

// ShowAndRun starts the preview, shows the window and runs the app.
func (mw *MainWindow) ShowAndRun() {
	ctx, cancel := context.WithCancel(context.Background())
	mw.cancel = cancel
	mw.preview.Start(ctx)
	mw.Window.ShowAndRun()
}

// Shutdown stops the preview and saves preferences.
func (mw *MainWindow) Shutdown() {
	if mw.cancel != nil {
		mw.cancel()
	}
	mw.preview.Dispose()
	if err := mw.prefs.SaveIfChanged(); err != nil {
		applog.Logger().Warn("save preferences", "err", err)
	}
}

func (mw *MainWindow) onClose() {
	if !mw.state.Modified() {
		mw.Shutdown()
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved changes", "Quit without saving?", func(ok bool) {
		if ok {
			mw.Shutdown()
			mw.Close()
		}
	}, mw.Window)
}

func (mw *MainWindow) setMode(m surface.Mode) {
	mw.ctrl.SetMode(m)
	mw.prefs.SetString(prefs.KeyMode, string(m))
	mw.sidePanel.Settings.Refresh()
	mw.updateFooter()
	mw.updateStatus("Mode: " + m.Label())
}

func (mw *MainWindow) showError(err error) {
	applog.Logger().Debug("input rejected", "err", err)
	dialog.ShowError(err, mw.Window)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	name := "Untitled"
	if path := mw.state.ProjectPath(); path != "" {
		name = filepath.Base(path)
	}
	title := appTitle + " - " + name
	if mw.state.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) updateFooter() {
	s := mw.state.Settings()
	mw.ctrl.SetFooter(fmt.Sprintf("%s  %gx%gx%g  %g px/unit  brush %g  %s",
		s.Template.Name, s.Dims.X, s.Dims.Y, s.Dims.Z, s.Resolution, s.BrushSize, mw.ctrl.Mode().Label()))
	mw.canvas.Refresh()
}

// rememberSettings stores the current settings as the next launch's
// defaults.
func (mw *MainWindow) rememberSettings() {
	s := mw.state.Settings()
	mw.prefs.SetFloat(prefs.KeySizeX, s.Dims.X)
	mw.prefs.SetFloat(prefs.KeySizeY, s.Dims.Y)
	mw.prefs.SetFloat(prefs.KeySizeZ, s.Dims.Z)
	mw.prefs.SetFloat(prefs.KeyResolution, s.Resolution)
	mw.prefs.SetFloat(prefs.KeyMargin, float64(s.Margin))
	mw.prefs.SetFloat(prefs.KeyBrush, s.BrushSize)
	if _, ok := unfold.Lookup(s.Template.Name); ok {
		mw.prefs.SetString(prefs.KeyTemplate, s.Template.Name)
	}
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	start := func() {
		if err := mw.state.NewProject(mw.state.Settings()); err != nil {
			mw.showError(err)
		}
	}
	if !mw.state.Modified() {
		start()
		return
	}
	dialog.ShowConfirm("Unsaved changes", "Discard the current design?", func(ok bool) {
		if ok {
			start()
		}
	}, mw.Window)
}

func (mw *MainWindow) onOpenProject() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadProject(path); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{projectExt}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveProject() {
	path := mw.state.ProjectPath()
	if path == "" {
		mw.onSaveProjectAs()
		return
	}
	if err := mw.state.SaveProject(path); err != nil {
		mw.showError(err)
	}
}

func (mw *MainWindow) onSaveProjectAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != projectExt {
			path += projectExt
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveProject(path); err != nil {
			mw.showError(err)
		}
	}, mw.Window)
	fd.SetFileName("design" + projectExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onLoadTemplates() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		names, err := unfold.LoadTemplates(path)
		if err != nil {
			mw.showError(err)
			return
		}
		mw.state.Emit(app.EventTemplatesChanged, names)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{templateFilter, ".yml"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onClearFacePatterns() {
	face := mw.state.CurrentFace()
	if face == unfold.FaceNone {
		mw.updateStatus("Select a face first")
		return
	}
	if err := mw.state.ClearFacePatterns(face); err != nil {
		mw.showError(err)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Design the unfolded net of a box, paint it and\n"+
			"apply procedural face patterns with a live 3D preview.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
