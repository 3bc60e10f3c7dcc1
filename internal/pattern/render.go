package pattern

import (
	"image"
	"sync"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// Coverage values written into the pattern layer.
const (
	Covered   uint8 = 0xff
	Uncovered uint8 = 0x00
)

// Render rasterizes one pattern into dst within rect and returns how many
// pixels it touched. Pixels are sampled at their centers; paint sets them
// to Covered and erase to Uncovered. Pixels outside rect are never touched.
// A degenerate rect renders nothing.
func Render(dst *image.Alpha, rect geometry.RectInt, fp FacePattern, resolution float64) int {
	if rect.Empty() || resolution <= 0 {
		return 0
	}
	region := Coverage(fp, rect.ToFloat(), resolution)
	value := Uncovered
	if fp.Op == OpPaint {
		value = Covered
	}

	area := rect.ImageRect().Intersect(dst.Rect)
	touched := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		cy := float64(y) + 0.5
		row := dst.Pix[dst.PixOffset(area.Min.X, y):]
		for x := area.Min.X; x < area.Max.X; x++ {
			if region.Contains(float64(x)+0.5, cy) {
				row[x-area.Min.X] = value
				touched++
			}
		}
	}
	return touched
}

// Snapshot is a read-only copy of the pattern layer at a given version.
type Snapshot struct {
	Version uint64
	Image   *image.Alpha
}

// Layer is the atlas-sized raster that patterns are rendered into. It is
// separate from the user mask and is rebuilt from the pattern map as a
// whole.
type Layer struct {
	mu      sync.RWMutex
	img     *image.Alpha
	version uint64
}

// NewLayer creates an empty pattern layer of the given atlas size.
func NewLayer(width, height int) *Layer {
	return &Layer{img: image.NewAlpha(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Bounds returns the atlas rectangle.
func (l *Layer) Bounds() image.Rectangle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.img.Rect
}

// Version returns the mutation counter.
func (l *Layer) Version() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.version
}

// At returns the coverage at an atlas pixel.
func (l *Layer) At(x, y int) uint8 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.img.AlphaAt(x, y).A
}

// Snapshot copies the current pixels.
func (l *Layer) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := image.NewAlpha(l.img.Rect)
	copy(cp.Pix, l.img.Pix)
	return Snapshot{Version: l.version, Image: cp}
}

// Resize replaces the layer with an empty one of the new size.
func (l *Layer) Resize(width, height int) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.img = image.NewAlpha(image.Rect(0, 0, max(width, 0), max(height, 0)))
	l.version++
	return l.version
}

// RenderPattern applies a single pattern to rect on top of the current
// content.
func (l *Layer) RenderPattern(rect geometry.RectInt, fp FacePattern, resolution float64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if Render(l.img, rect, fp, resolution) > 0 {
		l.version++
	}
	return l.version
}

// RenderMap clears the layer and re-applies every face's stack in order.
// Faces missing from the layout are skipped.
func (l *Layer) RenderMap(layout *unfold.Layout, m Map) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.img.Pix)
	total := 0
	for _, f := range unfold.Faces() {
		rect, ok := layout.FaceRects[f]
		if !ok {
			continue
		}
		for _, fp := range m[f] {
			total += Render(l.img, rect, fp, layout.Resolution)
		}
	}
	l.version++
	applog.Logger().Debug("pattern layer rendered", "pixels", total, "version", l.version)
	return l.version
}
