package preview

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

const (
	// AutoRotateRate is the idle spin in radians per second.
	AutoRotateRate = 0.35
	// DragRate is the rotation in radians per dragged view pixel.
	DragRate = math.Pi / 360
)

// Synchronizer holds the preview mesh and the six baked face textures and
// rebuilds them from the atlas when told something changed. Textures are
// rebuilt wholesale; there is no incremental update. It is safe for
// concurrent use: the host syncs from its event loop while the render loop
// draws from its own goroutine.
type Synchronizer struct {
	mu sync.Mutex

	size     int
	mesh     *Mesh
	camera   Camera
	textures map[unfold.Face]*image.RGBA

	layout  *unfold.Layout
	version uint64
	baked   bool

	orient   Orientation
	dragging bool
	disposed bool

	bakes, meshBuilds int
}

// NewSynchronizer creates a synchronizer baking size x size textures.
func NewSynchronizer(size int) *Synchronizer {
	if size <= 0 {
		size = TextureSize
	}
	return &Synchronizer{
		size:     size,
		textures: make(map[unfold.Face]*image.RGBA),
		orient:   DefaultOrientation(),
	}
}

// NeedsSync reports whether Sync with these inputs would re-bake, so hosts
// can skip taking snapshots.
func (s *Synchronizer) NeedsSync(l *unfold.Layout, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.needsBakeLocked(l, version) || s.needsMeshLocked(l)
}

func (s *Synchronizer) needsBakeLocked(l *unfold.Layout, version uint64) bool {
	if s.disposed || l == nil {
		return false
	}
	if !s.baked || s.layout == nil || version != s.version {
		return true
	}
	if l.Width != s.layout.Width || l.Height != s.layout.Height {
		return true
	}
	return !s.layout.SameFaceRects(l)
}

func (s *Synchronizer) needsMeshLocked(l *unfold.Layout) bool {
	return !s.disposed && l != nil && (s.mesh == nil || s.mesh.Dims != l.Dims)
}

// Sync brings the mesh and textures up to date. The mesh and camera are
// rebuilt when the physical dimensions changed; all textures are re-baked
// when the atlas size, the face rectangles or version changed. It reports
// whether textures were re-baked. Snapshots whose bounds do not match the
// layout are treated as empty.
func (s *Synchronizer) Sync(l *unfold.Layout, pat pattern.Snapshot, msk mask.Snapshot, version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.needsMeshLocked(l) {
		s.mesh = NewMesh(l.Dims)
		s.camera = FitCamera(s.mesh.Radius(), DefaultFOV)
		s.meshBuilds++
		applog.Logger().Info("preview mesh rebuilt",
			"x", l.Dims.X, "y", l.Dims.Y, "z", l.Dims.Z, "distance", s.camera.Distance)
	}
	if !s.needsBakeLocked(l, version) {
		return false
	}

	atlas := image.Rect(0, 0, l.Width, l.Height)
	patOverlay := overlay(pat.Image, atlas, colorutil.PatternInk, patternAlpha)
	maskOverlay := overlay(msk.Image, atlas, colorutil.MaskInk, maskAlpha)

	textures := make(map[unfold.Face]*image.RGBA, len(unfold.Faces()))
	for _, f := range l.PresentFaces() {
		textures[f] = Bake(f, l.FaceRects[f], patOverlay, maskOverlay, s.size)
	}
	s.textures = textures
	s.layout = l
	s.version = version
	s.baked = true
	s.bakes++
	applog.Logger().Debug("preview textures baked", "faces", len(textures), "version", version)
	return true
}

func overlay(src *image.Alpha, atlas image.Rectangle, c color.RGBA, alpha uint8) *image.NRGBA {
	if src == nil || src.Rect != atlas {
		return nil
	}
	return colorutil.Tint(src, c, alpha)
}

// Texture returns the baked texture for f. Callers must not modify it.
func (s *Synchronizer) Texture(f unfold.Face) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textures[f]
}

// Mesh returns the current mesh, or nil before the first Sync or after
// Dispose.
func (s *Synchronizer) Mesh() *Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh
}

// Camera returns the camera framing the current mesh.
func (s *Synchronizer) Camera() Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// Stats returns how many times textures were baked and the mesh built.
func (s *Synchronizer) Stats() (bakes, meshBuilds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bakes, s.meshBuilds
}

// Orientation returns the current model rotation.
func (s *Synchronizer) Orientation() Orientation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orient
}

// SetOrientation replaces the model rotation.
func (s *Synchronizer) SetOrientation(o Orientation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orient = o
}

// DragStart pauses auto-rotation.
func (s *Synchronizer) DragStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = true
}

// Drag rotates the model in proportion to the pointer movement in view
// pixels: horizontal motion turns, vertical motion tilts.
func (s *Synchronizer) Drag(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orient = s.orient.Turn(dx*DragRate, dy*DragRate)
}

// DragEnd resumes auto-rotation.
func (s *Synchronizer) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
}

// Dragging reports whether a drag is in progress.
func (s *Synchronizer) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// Tick advances auto-rotation by dt unless a drag is in progress.
func (s *Synchronizer) Tick(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dragging || s.disposed || dt <= 0 {
		return
	}
	s.orient = s.orient.Turn(AutoRotateRate*dt.Seconds(), 0)
}

// Render draws the current state with r. Textures are read under the
// synchronizer's lock, so a concurrent Sync never tears a frame.
func (s *Synchronizer) Render(r *Renderer) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Draw(s.mesh, s.textures, s.orient, s.camera)
}

// Dispose releases the mesh and textures. Later Syncs do nothing.
func (s *Synchronizer) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.mesh = nil
	s.textures = nil
	s.layout = nil
	applog.Logger().Info("preview disposed", "bakes", s.bakes)
}

// Disposed reports whether Dispose was called.
func (s *Synchronizer) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
