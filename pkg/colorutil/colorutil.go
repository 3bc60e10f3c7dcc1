// Package colorutil provides shared colors for the net designer.
package colorutil

import (
	"image"
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black      = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Background = color.RGBA{R: 24, G: 26, B: 31, A: 255}
	CellGrid   = color.NRGBA{R: 255, G: 255, B: 255, A: 28}
	FineGrid   = color.NRGBA{R: 255, G: 255, B: 255, A: 40}
	Seam       = color.RGBA{R: 230, G: 232, B: 238, A: 255}
	Highlight  = color.RGBA{R: 255, G: 196, B: 0, A: 255}
	Hinge      = color.NRGBA{R: 160, G: 210, B: 255, A: 220}
	Footer     = color.RGBA{R: 180, G: 184, B: 192, A: 255}

	// PatternInk colors pattern layer coverage.
	PatternInk = color.RGBA{R: 20, G: 120, B: 220, A: 255}
	// MaskInk colors painted mask pixels.
	MaskInk = color.RGBA{R: 235, G: 64, B: 52, A: 255}

	// TextureBase is the flat fill under each baked preview texture.
	TextureBase = color.RGBA{R: 238, G: 236, B: 230, A: 255}
	// Edge outlines the preview cuboid.
	Edge = color.RGBA{R: 18, G: 18, B: 22, A: 255}

	// TextureGrid is the faint fixed grid on baked preview textures.
	TextureGrid = color.NRGBA{R: 0, G: 0, B: 0, A: 24}
)

// facePalette holds one fill color per face in canonical face order
// (+X, -X, +Y, -Y, +Z, -Z).
var facePalette = [6]color.RGBA{
	{R: 239, G: 83, B: 80, A: 255},
	{R: 255, G: 167, B: 38, A: 255},
	{R: 102, G: 187, B: 106, A: 255},
	{R: 38, G: 198, B: 218, A: 255},
	{R: 92, G: 107, B: 192, A: 255},
	{R: 171, G: 71, B: 188, A: 255},
}

// FaceColor returns the palette color for the face at index i in canonical
// order. Indices wrap around.
func FaceColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return facePalette[i%len(facePalette)]
}

// WithAlpha returns c with its alpha replaced by a (0-1), premultiplying the
// color channels so the result is a valid color.RGBA.
func WithAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

// Float returns the color channels as straight (non-premultiplied) floats in
// 0-1, the form the gg drawing context expects.
func Float(c color.Color) (r, g, b, a float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255, float64(n.A) / 255
}

// Tint turns a coverage raster into a colored overlay of the same bounds.
// Coverage scales alpha; uncovered pixels stay transparent.
func Tint(src *image.Alpha, c color.RGBA, alpha uint8) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	w := src.Rect.Dx()
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		srow := src.Pix[src.PixOffset(src.Rect.Min.X, y):]
		drow := dst.Pix[dst.PixOffset(dst.Rect.Min.X, y):]
		for x := 0; x < w; x++ {
			a := srow[x]
			if a == 0 {
				continue
			}
			i := x * 4
			drow[i] = c.R
			drow[i+1] = c.G
			drow[i+2] = c.B
			drow[i+3] = uint8(uint16(a) * uint16(alpha) / 255)
		}
	}
	return dst
}
