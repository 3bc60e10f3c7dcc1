package mask

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaintCircleIsIdempotent(t *testing.T) {
	s := NewStore(64, 64)
	s.PaintCircle(30, 30, 9, true)
	once := s.Snapshot()

	s.PaintCircle(30, 30, 9, true)
	twice := s.Snapshot()

	assert.True(t, bytes.Equal(once.Image.Pix, twice.Image.Pix))
	assert.Greater(t, twice.Version, once.Version)
}

func TestPaintThenEraseRestoresPriorState(t *testing.T) {
	s := NewStore(80, 50)
	s.PaintCircle(10, 10, 6, true)
	s.PaintCircle(70, 40, 4, true)
	before := s.Snapshot()

	s.PaintCircle(40.3, 25.7, 11, true)
	require.NotEqual(t, before.Image.Pix, s.Snapshot().Image.Pix)
	s.PaintCircle(40.3, 25.7, 11, false)

	assert.True(t, bytes.Equal(before.Image.Pix, s.Snapshot().Image.Pix))
}

func TestPaintCircleDiscShape(t *testing.T) {
	s := NewStore(40, 40)
	s.PaintCircle(20, 20, 5, true)

	assert.Equal(t, Painted, s.At(20, 20))
	assert.Equal(t, Painted, s.At(24, 19))  // center (24.5,19.5): 4.5^2+0.5^2 <= 25
	assert.Equal(t, Cleared, s.At(25, 20))  // center (25.5,20.5): 5.5 > 5
	assert.Equal(t, Cleared, s.At(24, 24))  // center (24.5,24.5): corner outside
	assert.Equal(t, Painted, s.At(15, 19))  // center (15.5,19.5)
	for _, a := range s.Snapshot().Image.Pix {
		assert.True(t, a == Painted || a == Cleared, "no anti-aliasing")
	}
}

func TestPaintCircleClipsToAtlas(t *testing.T) {
	s := NewStore(10, 10)
	v0 := s.Version()
	s.PaintCircle(0, 0, 3, true)
	assert.Equal(t, Painted, s.At(0, 0))
	assert.Greater(t, s.Version(), v0)

	v1 := s.Version()
	s.PaintCircle(-50, -50, 3, true)
	assert.Equal(t, v1, s.Version(), "fully outside does not bump version")
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := NewStore(8, 8)
	snap := s.Snapshot()
	s.PaintCircle(4, 4, 2, true)
	assert.Equal(t, Cleared, snap.Image.AlphaAt(4, 4).A)
	assert.Equal(t, Painted, s.At(4, 4))
}

func TestMutateRegion(t *testing.T) {
	s := NewStore(20, 20)
	v := s.Mutate(image.Rect(5, 5, 8, 7), func(dst *image.Alpha) {
		for i := range dst.Pix {
			dst.Pix[i] = Painted
		}
	})
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 20*20, len(s.Snapshot().Image.Pix))
	assert.Equal(t, Painted, s.At(5, 5))
	assert.Equal(t, Painted, s.At(7, 6))
	assert.Equal(t, Cleared, s.At(8, 6))
}

func TestResizeDropsContent(t *testing.T) {
	s := NewStore(30, 30)
	s.PaintCircle(15, 15, 10, true)
	require.Positive(t, s.PaintedCount())

	v := s.Version()
	s.Resize(50, 40)
	assert.Equal(t, image.Rect(0, 0, 50, 40), s.Bounds())
	assert.Zero(t, s.PaintedCount())
	assert.Greater(t, s.Version(), v)
}

func TestClear(t *testing.T) {
	s := NewStore(30, 30)
	s.PaintCircle(15, 15, 10, true)
	s.Clear()
	assert.Zero(t, s.PaintedCount())
}
