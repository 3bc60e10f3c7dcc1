package preview

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

const (
	// TextureSize is the edge length of each baked face texture.
	TextureSize = 512

	textureGridCells = 8
	textureTint      = 0.22
	patternAlpha     = 210
	maskAlpha        = 230
)

// Bake draws one face texture of size x size: a flat base, a faint fixed
// grid, the face tint, then the face's crop of the pattern and mask
// overlays stretched to fill the texture. A degenerate rect bakes the base
// only.
func Bake(face unfold.Face, rect geometry.RectInt, patternOverlay, maskOverlay *image.NRGBA, size int) *image.RGBA {
	dc := gg.NewContext(size, size)
	defer dc.Close()
	s := float64(size)

	setColor(dc, colorutil.TextureBase, 1)
	dc.DrawRectangle(0, 0, s, s)
	_ = dc.Fill()

	dc.SetLineWidth(1)
	setColor(dc, colorutil.TextureGrid, 1)
	step := s / textureGridCells
	for i := 1; i < textureGridCells; i++ {
		p := float64(i)*step + 0.5
		dc.DrawLine(p, 0, p, s)
		dc.DrawLine(0, p, s, p)
	}
	_ = dc.Stroke()

	if i := face.Index(); i >= 0 {
		setColor(dc, colorutil.FaceColor(i), textureTint)
		dc.DrawRectangle(0, 0, s, s)
		_ = dc.Fill()
	}

	img := toRGBA(dc.Image())
	if rect.Empty() {
		return img
	}
	sr := rect.ImageRect()
	for _, ov := range []*image.NRGBA{patternOverlay, maskOverlay} {
		if ov == nil || !sr.In(ov.Rect) {
			continue
		}
		draw.ApproxBiLinear.Scale(img, img.Rect, ov, sr, draw.Over, nil)
	}
	return img
}

func setColor(dc *gg.Context, c color.Color, alpha float64) {
	r, g, b, a := colorutil.Float(c)
	dc.SetRGBA(r, g, b, a*alpha)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
