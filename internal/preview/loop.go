package preview

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
)

// DefaultFrameInterval paces the render loop at roughly 60 frames a second.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop drives auto-rotation and rendering on its own goroutine and hands
// each finished frame to onFrame. The frame passed to onFrame is reused by
// the next iteration.
type Loop struct {
	sync     *Synchronizer
	renderer *Renderer
	interval time.Duration
	onFrame  func(*image.RGBA)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a loop rendering s into a w x h frame.
func NewLoop(s *Synchronizer, w, h int, interval time.Duration, onFrame func(*image.RGBA)) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		sync:     s,
		renderer: NewRenderer(w, h),
		interval: interval,
		onFrame:  onFrame,
	}
}

// Start runs the loop until ctx is done or Stop is called. Starting a
// running loop does nothing.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	applog.Logger().Debug("preview loop started", "interval", l.interval)
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sync.Tick(now.Sub(last))
			last = now
			l.frame()
		}
	}
}

// frame renders one frame and delivers it.
func (l *Loop) frame() {
	l.mu.Lock()
	r := l.renderer
	l.mu.Unlock()

	img := l.sync.Render(r)
	if l.onFrame != nil {
		l.onFrame(img)
	}
}

// RenderOnce draws a frame synchronously without advancing rotation.
func (l *Loop) RenderOnce() *image.RGBA {
	l.mu.Lock()
	r := l.renderer
	l.mu.Unlock()
	return l.sync.Render(r)
}

// Stop halts the loop and waits for the goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Resize swaps in a renderer of the new size. The next frame uses it.
func (l *Loop) Resize(w, h int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cw, ch := l.renderer.Size(); cw == w && ch == h {
		return
	}
	l.renderer = NewRenderer(w, h)
}

// Dispose stops the loop and releases the synchronizer's resources.
func (l *Loop) Dispose() {
	l.Stop()
	l.sync.Dispose()
}
