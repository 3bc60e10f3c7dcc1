// Package mask holds the user-painted alpha layer that spans the whole
// atlas, and the brush stroke logic that writes into it.
package mask

import (
	"image"
	"math"
	"sync"
)

// Painted and Cleared are the only alpha values the store writes.
const (
	Painted uint8 = 0xff
	Cleared uint8 = 0x00
)

// Store owns the mask pixel buffer. Every mutation bumps a version counter
// so readers can tell whether a snapshot they hold is stale.
//
// The buffer is never resized in place: Resize replaces it and drops the
// old content.
type Store struct {
	mu      sync.RWMutex
	img     *image.Alpha
	version uint64
}

// Snapshot is a read-only copy of the mask at a given version.
type Snapshot struct {
	Version uint64
	Image   *image.Alpha
}

// NewStore creates an empty mask of the given atlas size.
func NewStore(width, height int) *Store {
	return &Store{img: image.NewAlpha(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Bounds returns the atlas rectangle covered by the mask.
func (s *Store) Bounds() image.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Rect
}

// Version returns the current mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// At returns the alpha at an atlas pixel, or 0 outside the atlas.
func (s *Store) At(x, y int) uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.AlphaAt(x, y).A
}

// Snapshot copies the current pixels.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := image.NewAlpha(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return Snapshot{Version: s.version, Image: cp}
}

// Mutate runs fn on the part of the buffer inside region and returns the
// new version. A region outside the atlas is a no-op and does not bump the
// version.
func (s *Store) Mutate(region image.Rectangle, fn func(dst *image.Alpha)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	region = region.Intersect(s.img.Rect)
	if region.Empty() {
		return s.version
	}
	fn(s.img.SubImage(region).(*image.Alpha))
	s.version++
	return s.version
}

// PaintCircle sets (paint) or clears (erase) every pixel whose center lies
// within radius of (cx, cy). There is no anti-aliasing: a pixel is either
// fully painted or fully cleared, which makes painting idempotent and an
// identical erase an exact inverse.
func (s *Store) PaintCircle(cx, cy, radius float64, paint bool) uint64 {
	if radius < 0 || math.IsNaN(radius) {
		return s.Version()
	}
	region := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius))+1, int(math.Ceil(cy+radius))+1,
	)
	value := Cleared
	if paint {
		value = Painted
	}
	r2 := radius * radius
	return s.Mutate(region, func(dst *image.Alpha) {
		b := dst.Rect
		for y := b.Min.Y; y < b.Max.Y; y++ {
			dy := float64(y) + 0.5 - cy
			row := dst.Pix[dst.PixOffset(b.Min.X, y):]
			for x := b.Min.X; x < b.Max.X; x++ {
				dx := float64(x) + 0.5 - cx
				if dx*dx+dy*dy <= r2 {
					row[x-b.Min.X] = value
				}
			}
		}
	})
}

// Clear erases the whole mask.
func (s *Store) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.img.Pix)
	s.version++
	return s.version
}

// Resize replaces the buffer with an empty one of the new size. Existing
// content does not survive.
func (s *Store) Resize(width, height int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = image.NewAlpha(image.Rect(0, 0, max(width, 0), max(height, 0)))
	s.version++
	return s.version
}

// PaintedCount returns the number of painted pixels.
func (s *Store) PaintedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.img.Pix {
		if a != Cleared {
			n++
		}
	}
	return n
}
