// Package preview provides the fyne widget showing the rotating 3D box.
package preview

import (
	"context"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/draw"

	"github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	boxpreview "github.com/squall321/SmartTwinCluster-sub006/internal/preview"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

const (
	initialSize = 320
	minSize     = 200
)

// View shows the synchronizer's frames and rotates the box on drag. It
// re-bakes textures from the bound state on its own goroutine, coalescing
// bursts of edits into one sync.
type View struct {
	widget.BaseWidget

	state  *app.State
	sync   *boxpreview.Synchronizer
	loop   *boxpreview.Loop
	raster *fynecanvas.Raster

	mu       sync.Mutex
	frame    *image.RGBA
	dragging bool

	requests chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

var _ fyne.Draggable = (*View)(nil)

// NewView creates a preview of state. Call Start to begin rendering.
func NewView(state *app.State) *View {
	v := &View{
		state:    state,
		sync:     boxpreview.NewSynchronizer(boxpreview.TextureSize),
		requests: make(chan struct{}, 1),
	}
	v.loop = boxpreview.NewLoop(v.sync, initialSize, initialSize, boxpreview.DefaultFrameInterval, v.onFrame)
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels

	for _, ev := range []app.EventType{
		app.EventLayoutChanged,
		app.EventMaskEdited,
		app.EventPatternsChanged,
		app.EventProjectLoaded,
	} {
		state.On(ev, func(any) { v.RequestSync() })
	}

	v.ExtendBaseWidget(v)
	return v
}

// Synchronizer returns the underlying synchronizer.
func (v *View) Synchronizer() *boxpreview.Synchronizer {
	return v.sync
}

// RequestSync schedules a sync. Requests made while one is pending are
// merged.
func (v *View) RequestSync() {
	select {
	case v.requests <- struct{}{}:
	default:
	}
}

// SyncNow brings the textures up to date with the bound state and reports
// whether they were re-baked.
func (v *View) SyncNow() bool {
	l, version := v.state.Layout(), v.state.Version()
	if !v.sync.NeedsSync(l, version) {
		return false
	}
	return v.sync.Sync(l, v.state.PatternLayer().Snapshot(), v.state.Mask().Snapshot(), version)
}

// Start begins syncing and rendering until ctx is done or Dispose.
func (v *View) Start(ctx context.Context) {
	v.mu.Lock()
	if v.cancel != nil {
		v.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.done = make(chan struct{})
	done := v.done
	v.mu.Unlock()

	v.SyncNow()
	go v.syncLoop(ctx, done)
	v.loop.Start(ctx)
}

func (v *View) syncLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.requests:
			v.SyncNow()
		}
	}
}

// Dispose stops rendering and releases the preview's resources.
func (v *View) Dispose() {
	v.mu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel, v.done = nil, nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	v.loop.Dispose()
	applog.Logger().Debug("preview view disposed")
}

// onFrame runs on the loop goroutine. The loop reuses img, so it is copied
// into a new buffer; a frame handed to the raster is never written again.
func (v *View) onFrame(img *image.RGBA) {
	next := image.NewRGBA(img.Rect)
	copy(next.Pix, img.Pix)
	v.mu.Lock()
	v.frame = next
	v.mu.Unlock()
	v.raster.Refresh()
}

// draw is the raster generator; it shows the latest delivered frame.
func (v *View) draw(w, h int) image.Image {
	v.loop.Resize(w, h)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.frame == nil {
		return blank(w, h)
	}
	return v.frame
}

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(img, img.Rect, image.NewUniform(colorutil.Background), image.Point{}, draw.Src)
	return img
}

// Dragged rotates the box with the pointer.
func (v *View) Dragged(ev *fyne.DragEvent) {
	v.mu.Lock()
	start := !v.dragging
	v.dragging = true
	v.mu.Unlock()
	if start {
		v.sync.DragStart()
	}
	v.sync.Drag(float64(ev.Dragged.DX), float64(ev.Dragged.DY))
}

// DragEnd resumes auto-rotation.
func (v *View) DragEnd() {
	v.mu.Lock()
	v.dragging = false
	v.mu.Unlock()
	v.sync.DragEnd()
}

// MinSize keeps the preview usable in narrow layouts.
func (v *View) MinSize() fyne.Size {
	return fyne.NewSize(minSize, minSize)
}

// CreateRenderer implements fyne.Widget.
func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}
