// Package canvas provides the interactive atlas view: a fyne widget that
// hosts a surface.Controller, forwards pointer input to it and shows its
// frames, scrolling when a fixed zoom makes the atlas larger than the view.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"github.com/squall321/SmartTwinCluster-sub006/internal/surface"
)

const zoomStep = 1.25

// AtlasCanvas shows the atlas and turns pointer input into controller calls.
type AtlasCanvas struct {
	widget.BaseWidget

	ctrl *surface.Controller

	raster  *fynecanvas.Raster
	content *atlasContent
	scroll  *zoomScroll

	// pxScale converts widget units to raster pixels; it is updated on
	// every draw.
	mu      sync.Mutex
	pxScale float64

	onZoomChange func(z surface.Zoom)
}

// zoomScroll wraps a scroll container but uses the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *AtlasCanvas
}

func newZoomScroll(content fyne.CanvasObject, ac *AtlasCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: ac}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	zs.canvas.wheel(ev.Scrolled.DY)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Resize sets the size of the scroll container.
func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// Refresh refreshes the scroll container.
func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

// atlasContent wraps the raster to receive pointer events. Its minimum size
// is the atlas content size at a fixed zoom and zero at fit zoom, so the
// scroll container only scrolls when the atlas overflows.
type atlasContent struct {
	widget.BaseWidget
	canvas *AtlasCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable = (*atlasContent)(nil)
	_ desktop.Hoverable = (*atlasContent)(nil)
	_ fyne.Draggable    = (*atlasContent)(nil)
	_ mobile.Touchable  = (*atlasContent)(nil)
	_ fyne.Scrollable   = (*atlasContent)(nil)
)

func newAtlasContent(ac *AtlasCanvas, raster *fynecanvas.Raster) *atlasContent {
	c := &atlasContent{canvas: ac, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *atlasContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *atlasContent) MinSize() fyne.Size {
	ctrl := c.canvas.ctrl
	if ctrl.Zoom().Fit {
		return fyne.NewSize(0, 0)
	}
	w, h := ctrl.ContentSize()
	s := c.canvas.scale()
	return fyne.NewSize(float32(float64(w)/s), float32(float64(h)/s))
}

func (c *atlasContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.canvas.press(ev.Position)
}

func (c *atlasContent) MouseUp(*desktop.MouseEvent) {
	c.canvas.release()
}

func (c *atlasContent) MouseIn(*desktop.MouseEvent) {}

func (c *atlasContent) MouseMoved(*desktop.MouseEvent) {}

// MouseOut ends a stroke when the pointer leaves the view.
func (c *atlasContent) MouseOut() {
	c.canvas.cancel()
}

func (c *atlasContent) Dragged(ev *fyne.DragEvent) {
	c.canvas.move(ev.Position)
}

func (c *atlasContent) DragEnd() {
	c.canvas.release()
}

func (c *atlasContent) TouchDown(ev *mobile.TouchEvent) {
	c.canvas.press(ev.Position)
}

func (c *atlasContent) TouchUp(*mobile.TouchEvent) {
	c.canvas.release()
}

func (c *atlasContent) TouchCancel(*mobile.TouchEvent) {
	c.canvas.cancel()
}

func (c *atlasContent) Scrolled(ev *fyne.ScrollEvent) {
	c.canvas.wheel(ev.Scrolled.DY)
}

// NewAtlasCanvas creates a canvas showing ctrl's frames.
func NewAtlasCanvas(ctrl *surface.Controller) *AtlasCanvas {
	ac := &AtlasCanvas{ctrl: ctrl, pxScale: 1}

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.content = newAtlasContent(ac, ac.raster)
	ac.scroll = newZoomScroll(ac.content, ac)

	ac.ExtendBaseWidget(ac)
	return ac
}

// Controller returns the hosted controller.
func (ac *AtlasCanvas) Controller() *surface.Controller {
	return ac.ctrl
}

// draw is the raster generator. w and h are in device pixels.
func (ac *AtlasCanvas) draw(w, h int) image.Image {
	if size := ac.content.Size(); size.Width > 0 {
		ac.mu.Lock()
		ac.pxScale = float64(w) / float64(size.Width)
		ac.mu.Unlock()
	}
	ac.ctrl.Resize(w, h)
	if img := ac.ctrl.Frame(); img != nil {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
}

func (ac *AtlasCanvas) scale() float64 {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.pxScale <= 0 {
		return 1
	}
	return ac.pxScale
}

func (ac *AtlasCanvas) toPixels(p fyne.Position) (x, y float64) {
	s := ac.scale()
	return float64(p.X) * s, float64(p.Y) * s
}

func (ac *AtlasCanvas) press(p fyne.Position) {
	x, y := ac.toPixels(p)
	ac.ctrl.Press(x, y)
	ac.raster.Refresh()
}

func (ac *AtlasCanvas) move(p fyne.Position) {
	if !ac.ctrl.Stroking() {
		return
	}
	x, y := ac.toPixels(p)
	ac.ctrl.Move(x, y)
	ac.raster.Refresh()
}

func (ac *AtlasCanvas) release() {
	ac.ctrl.Release()
}

func (ac *AtlasCanvas) cancel() {
	ac.ctrl.Cancel()
}

func (ac *AtlasCanvas) wheel(dy float32) {
	switch {
	case dy > 0:
		ac.ZoomIn()
	case dy < 0:
		ac.ZoomOut()
	}
}

// Container returns the scrollable view for embedding in layouts.
func (ac *AtlasCanvas) Container() fyne.CanvasObject {
	return ac.scroll
}

// SetZoom switches the controller's zoom and resizes the scroll content.
func (ac *AtlasCanvas) SetZoom(z surface.Zoom) {
	ac.ctrl.SetZoom(z)
	ac.content.Refresh()
	ac.scroll.Refresh()
	ac.raster.Refresh()
	if ac.onZoomChange != nil {
		ac.onZoomChange(z)
	}
}

// Zoom returns the current zoom setting.
func (ac *AtlasCanvas) Zoom() surface.Zoom {
	return ac.ctrl.Zoom()
}

// ZoomIn switches to a fixed zoom one step above the current scale.
func (ac *AtlasCanvas) ZoomIn() {
	ac.SetZoom(surface.FixedZoom(ac.ctrl.Viewport().Scale * zoomStep))
}

// ZoomOut switches to a fixed zoom one step below the current scale.
func (ac *AtlasCanvas) ZoomOut() {
	ac.SetZoom(surface.FixedZoom(ac.ctrl.Viewport().Scale / zoomStep))
}

// FitToWindow switches to fit zoom.
func (ac *AtlasCanvas) FitToWindow() {
	ac.SetZoom(surface.FitZoom())
}

// OnZoomChange sets a callback for zoom changes.
func (ac *AtlasCanvas) OnZoomChange(callback func(z surface.Zoom)) {
	ac.onZoomChange = callback
}

// Refresh redraws the atlas.
func (ac *AtlasCanvas) Refresh() {
	ac.content.Refresh()
	ac.raster.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ac *AtlasCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.scroll)
}
