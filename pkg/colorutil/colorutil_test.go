package colorutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaceColorWraps(t *testing.T) {
	assert.Equal(t, FaceColor(0), FaceColor(6))
	assert.Equal(t, FaceColor(1), FaceColor(-1))
	assert.NotEqual(t, FaceColor(0), FaceColor(1))
}

func TestWithAlphaPremultiplies(t *testing.T) {
	c := WithAlpha(color.RGBA{R: 200, G: 100, B: 50, A: 255}, 0.5)
	assert.Equal(t, color.RGBA{R: 100, G: 50, B: 25, A: 127}, c)
	assert.LessOrEqual(t, c.R, c.A)
}

func TestFloatUnpremultiplies(t *testing.T) {
	r, g, b, a := Float(color.NRGBA{R: 255, G: 0, B: 51, A: 102})
	assert.InDelta(t, 1.0, r, 1e-9)
	assert.InDelta(t, 0.0, g, 1e-9)
	assert.InDelta(t, 0.2, b, 1e-9)
	assert.InDelta(t, 0.4, a, 1e-9)
}

func TestTint(t *testing.T) {
	src := image.NewAlpha(image.Rect(3, 1, 5, 2))
	src.SetAlpha(4, 1, color.Alpha{A: 255})
	out := Tint(src, color.RGBA{R: 10, G: 20, B: 30, A: 255}, 128)

	assert.Equal(t, src.Rect, out.Rect)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(3, 1))
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 128}, out.NRGBAAt(4, 1))
}
