package surface

import (
	"image"
	"sync"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// Config wires a Controller to its buffers and callbacks.
type Config struct {
	Mask     *mask.Store
	Patterns *pattern.Layer

	// OnEdited fires after every brush step with the mask version.
	OnEdited func(version uint64)
	// OnFaceSelected fires when a press in pattern-select mode hits a face.
	OnFaceSelected func(face unfold.Face)
}

// Controller owns the visible frame and translates pointer input into mask
// edits or face selection. All methods are safe for concurrent use; the
// host normally calls them from its input loop and reads Frame from its
// draw callback.
type Controller struct {
	mu sync.Mutex

	cfg    Config
	layout *unfold.Layout

	viewW, viewH int
	zoom         Zoom
	viewport     Viewport

	mode        Mode
	brushSize   float64
	currentFace unfold.Face
	footer      string

	stroke *mask.Stroke

	frame        *image.RGBA
	dirty        bool
	frameMask    uint64
	framePattern uint64
	overlays     overlayCache
}

// NewController creates a controller in paint mode with fit zoom.
func NewController(cfg Config) *Controller {
	return &Controller{
		cfg:       cfg,
		zoom:      FitZoom(),
		mode:      ModePaint,
		brushSize: 1,
		dirty:     true,
	}
}

// SetLayout installs a new layout. Any active stroke is abandoned.
func (c *Controller) SetLayout(l *unfold.Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endStrokeLocked()
	c.layout = l
	c.overlays = overlayCache{}
	c.updateViewportLocked()
}

// Layout returns the layout currently drawn.
func (c *Controller) Layout() *unfold.Layout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layout
}

// Resize sets the view size in pixels.
func (c *Controller) Resize(w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w == c.viewW && h == c.viewH {
		return
	}
	c.viewW, c.viewH = max(w, 0), max(h, 0)
	c.updateViewportLocked()
}

// SetZoom switches between fit and fixed zoom.
func (c *Controller) SetZoom(z Zoom) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = z
	c.updateViewportLocked()
}

// Zoom returns the zoom setting.
func (c *Controller) Zoom() Zoom {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Viewport returns the current atlas-to-view mapping.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

// ContentSize returns the view size the atlas needs at the current zoom.
func (c *Controller) ContentSize() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.layout == nil {
		return 0, 0
	}
	return c.viewport.ContentSize(c.layout.Width, c.layout.Height, FitMargin)
}

func (c *Controller) updateViewportLocked() {
	aw, ah := 0, 0
	if c.layout != nil {
		aw, ah = c.layout.Width, c.layout.Height
	}
	c.viewport = NewViewport(c.zoom, c.viewW, c.viewH, aw, ah, FitMargin)
	c.dirty = true
}

// SetMode changes what presses do. Any active stroke ends.
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m == c.mode {
		return
	}
	c.endStrokeLocked()
	c.mode = m
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetBrushSize sets the brush radius in physical units. Non-positive sizes
// are ignored.
func (c *Controller) SetBrushSize(size float64) {
	if !(size > 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brushSize = size
}

// BrushRadiusPx returns the brush radius in atlas pixels.
func (c *Controller) BrushRadiusPx() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brushRadiusLocked()
}

func (c *Controller) brushRadiusLocked() float64 {
	if c.layout == nil {
		return 0
	}
	return c.brushSize * c.layout.Resolution
}

// SetCurrentFace highlights a face, or none with FaceNone.
func (c *Controller) SetCurrentFace(f unfold.Face) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f != c.currentFace {
		c.currentFace = f
		c.dirty = true
	}
}

// SetFooter sets the footer text; empty hides it.
func (c *Controller) SetFooter(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s != c.footer {
		c.footer = s
		c.dirty = true
	}
}

// Invalidate forces the next Frame to redraw.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = true
}

// Stroking reports whether a stroke is in progress.
func (c *Controller) Stroking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stroke != nil
}

// Press handles a pointer press at view coordinates. In pattern-select
// mode it hit-tests the faces and reports the hit; otherwise it starts a
// stroke and paints the first point.
func (c *Controller) Press(x, y float64) {
	c.mu.Lock()
	if c.layout == nil {
		c.mu.Unlock()
		return
	}
	p := c.viewport.ToAtlas(x, y)

	if c.mode == ModePatternSelect {
		face, ok := c.layout.FaceAt(p.X, p.Y)
		onSelect := c.cfg.OnFaceSelected
		c.mu.Unlock()
		if ok && onSelect != nil {
			onSelect(face)
		}
		return
	}

	c.endStrokeLocked()
	if c.cfg.Mask == nil {
		c.mu.Unlock()
		return
	}
	c.stroke = mask.NewStroke(c.cfg.Mask, c.layout, c.brushRadiusLocked(), c.mode == ModePaint, c.edited)
	stroke := c.stroke
	c.mu.Unlock()

	// Painting runs without the lock so OnEdited may call back in.
	stroke.Begin(p)
}

// Move handles pointer motion at view coordinates while pressed.
func (c *Controller) Move(x, y float64) {
	c.mu.Lock()
	if c.stroke == nil || c.mode == ModePatternSelect {
		c.mu.Unlock()
		return
	}
	p := c.viewport.ToAtlas(x, y)
	stroke := c.stroke
	c.mu.Unlock()

	stroke.Move(p)
}

// Release ends the current stroke.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endStrokeLocked()
}

// Cancel ends the current stroke on pointer leave or cancel. Pixels
// already painted stay painted.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stroke != nil {
		applog.Logger().Debug("stroke cancelled")
	}
	c.endStrokeLocked()
}

func (c *Controller) endStrokeLocked() {
	if c.stroke != nil {
		c.stroke.End()
		c.stroke = nil
	}
}

func (c *Controller) edited(version uint64) {
	c.mu.Lock()
	c.dirty = true
	onEdited := c.cfg.OnEdited
	c.mu.Unlock()
	if onEdited != nil {
		onEdited(version)
	}
}

// Frame returns the current frame, redrawing it when the view, the layout
// or either layer changed since the last call. The returned image must not
// be modified.
func (c *Controller) Frame() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	var maskV, patV uint64
	if c.cfg.Mask != nil {
		maskV = c.cfg.Mask.Version()
	}
	if c.cfg.Patterns != nil {
		patV = c.cfg.Patterns.Version()
	}
	if c.frame != nil && !c.dirty && maskV == c.frameMask && patV == c.framePattern {
		return c.frame
	}

	c.frame = c.renderLocked()
	c.dirty = false
	c.frameMask, c.framePattern = maskV, patV
	return c.frame
}
