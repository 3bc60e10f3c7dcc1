package preview

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

func paintedOverlay(w, h int, r geometry.RectInt) *image.NRGBA {
	a := image.NewAlpha(image.Rect(0, 0, w, h))
	ir := r.ImageRect()
	for y := ir.Min.Y; y < ir.Max.Y; y++ {
		for x := ir.Min.X; x < ir.Max.X; x++ {
			a.Pix[a.PixOffset(x, y)] = 255
		}
	}
	return colorutil.Tint(a, colorutil.MaskInk, 255)
}

func TestBakeBaseTexture(t *testing.T) {
	rect := geometry.RectInt{X: 10, Y: 10, Width: 40, Height: 20}
	img := Bake(unfold.FacePZ, rect, nil, nil, 64)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Rect)

	c := img.RGBAAt(32, 20)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, c.R, uint8(150), "base stays light under the face tint")
}

func TestBakeStretchesFaceCrop(t *testing.T) {
	rect := geometry.RectInt{X: 10, Y: 10, Width: 40, Height: 20}
	ov := paintedOverlay(100, 60, rect)

	img := Bake(unfold.FacePZ, rect, nil, ov, 64)
	c := img.RGBAAt(32, 32)
	assert.InDelta(t, float64(colorutil.MaskInk.R), float64(c.R), 1)
	assert.InDelta(t, float64(colorutil.MaskInk.G), float64(c.G), 1)
	assert.InDelta(t, float64(colorutil.MaskInk.B), float64(c.B), 1)

	// Paint outside the face rect never reaches its texture.
	other := paintedOverlay(100, 60, geometry.RectInt{X: 60, Y: 10, Width: 30, Height: 30})
	clean := Bake(unfold.FacePZ, rect, nil, nil, 64)
	img = Bake(unfold.FacePZ, rect, other, nil, 64)
	assert.Equal(t, clean.Pix, img.Pix)
}

func TestBakeSkipsUnusableOverlays(t *testing.T) {
	clean := Bake(unfold.FacePX, geometry.RectInt{}, nil, nil, 32)

	ov := paintedOverlay(100, 60, geometry.RectInt{Width: 100, Height: 60})
	assert.Equal(t, clean.Pix, Bake(unfold.FacePX, geometry.RectInt{}, ov, ov, 32).Pix, "empty rect")

	small := paintedOverlay(20, 20, geometry.RectInt{Width: 20, Height: 20})
	rect := geometry.RectInt{X: 10, Y: 10, Width: 40, Height: 20}
	assert.Equal(t, Bake(unfold.FacePX, rect, nil, nil, 32).Pix, Bake(unfold.FacePX, rect, small, nil, 32).Pix, "overlay smaller than the rect")
}
