package surface

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

const (
	// FineGridStep is the fine grid spacing in physical units.
	FineGridStep = 20.0
	// MinFineGridPx is the smallest on-screen spacing at which the fine
	// grid is drawn.
	MinFineGridPx = 4.0

	faceFillAlpha = 0.35
	patternAlpha  = 200
	maskAlpha     = 220
)

// FineGridVisible reports whether gridlines every FineGridStep physical
// units would be at least MinFineGridPx view pixels apart.
func FineGridVisible(resolution, scale float64) bool {
	return FineGridStep*resolution*scale >= MinFineGridPx
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
)

func labelFont() *text.FontSource {
	fontOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			applog.Logger().Warn("label font unavailable", "err", err)
			return
		}
		fontSource = src
	})
	return fontSource
}

// overlayCache holds the tinted layer images keyed by layer version.
type overlayCache struct {
	pattern, mask       *image.NRGBA
	patternVer, maskVer uint64
	hasPattern, hasMask bool
}

func setColor(dc *gg.Context, c color.Color, alpha float64) {
	r, g, b, a := colorutil.Float(c)
	dc.SetRGBA(r, g, b, a*alpha)
}

// renderLocked draws the frame in layer order: background, cell grid, face
// fills, fine grid, pattern layer, mask layer, seams and labels, hinges,
// footer.
func (c *Controller) renderLocked() *image.RGBA {
	w, h := c.viewW, c.viewH
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()
	setColor(dc, colorutil.Black, 1)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	_ = dc.Fill()

	l := c.layout
	if l == nil {
		return toRGBA(dc.Image())
	}
	vp := c.viewport

	c.drawBase(dc, l, vp)
	frame := toRGBA(dc.Image())
	c.compositeLayers(frame, l, vp)

	top := gg.NewContextForImage(frame)
	defer top.Close()
	c.drawSeams(top, l, vp)
	c.drawHinges(top, l, vp)
	c.drawFooter(top, h)
	return toRGBA(top.Image())
}

// drawBase draws the background, cell grid, face fills and fine grid.
func (c *Controller) drawBase(dc *gg.Context, l *unfold.Layout, vp Viewport) {
	atlas := vp.RectToView(geometry.RectInt{Width: l.Width, Height: l.Height})
	setColor(dc, colorutil.Background, 1)
	dc.DrawRectangle(atlas.X, atlas.Y, atlas.Width, atlas.Height)
	_ = dc.Fill()

	dc.SetLineWidth(1)
	setColor(dc, colorutil.CellGrid, 1)
	for _, key := range l.OccupiedCells() {
		r := vp.RectToView(l.Cells[key])
		dc.DrawRectangle(r.X+0.5, r.Y+0.5, r.Width-1, r.Height-1)
		// Cross-hair through the cell center.
		cx, cy := r.X+r.Width/2, r.Y+r.Height/2
		dc.DrawLine(r.X, cy, r.X+r.Width, cy)
		dc.DrawLine(cx, r.Y, cx, r.Y+r.Height)
	}
	_ = dc.Stroke()

	for _, f := range l.PresentFaces() {
		r := vp.RectToView(l.FaceRects[f])
		if r.Width <= 0 || r.Height <= 0 {
			continue
		}
		setColor(dc, colorutil.FaceColor(f.Index()), faceFillAlpha)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		_ = dc.Fill()
	}

	if !FineGridVisible(l.Resolution, vp.Scale) {
		return
	}
	step := FineGridStep * l.Resolution
	setColor(dc, colorutil.FineGrid, 1)
	for _, f := range l.PresentFaces() {
		fr := l.FaceRects[f]
		if fr.Empty() {
			continue
		}
		for x := float64(fr.X) + step; x < float64(fr.Right()); x += step {
			a := vp.ToView(geometry.NewPoint2D(x, float64(fr.Y)))
			b := vp.ToView(geometry.NewPoint2D(x, float64(fr.Bottom())))
			dc.DrawLine(a.X, a.Y, b.X, b.Y)
		}
		for y := float64(fr.Y) + step; y < float64(fr.Bottom()); y += step {
			a := vp.ToView(geometry.NewPoint2D(float64(fr.X), y))
			b := vp.ToView(geometry.NewPoint2D(float64(fr.Right()), y))
			dc.DrawLine(a.X, a.Y, b.X, b.Y)
		}
	}
	_ = dc.Stroke()
}

// compositeLayers scales the pattern layer and then the mask onto frame
// with nearest-neighbour sampling so pixel edges stay crisp.
func (c *Controller) compositeLayers(frame *image.RGBA, l *unfold.Layout, vp Viewport) {
	atlas := vp.RectToView(geometry.RectInt{Width: l.Width, Height: l.Height})
	dr := image.Rect(
		int(math.Round(atlas.X)), int(math.Round(atlas.Y)),
		int(math.Round(atlas.X+atlas.Width)), int(math.Round(atlas.Y+atlas.Height)),
	)
	if dr.Empty() {
		return
	}

	if p := c.cfg.Patterns; p != nil {
		if !c.overlays.hasPattern || c.overlays.patternVer != p.Version() {
			snap := p.Snapshot()
			c.overlays.pattern = colorutil.Tint(snap.Image, colorutil.PatternInk, patternAlpha)
			c.overlays.patternVer, c.overlays.hasPattern = snap.Version, true
		}
		draw.NearestNeighbor.Scale(frame, dr, c.overlays.pattern, c.overlays.pattern.Rect, draw.Over, nil)
	}
	if m := c.cfg.Mask; m != nil {
		if !c.overlays.hasMask || c.overlays.maskVer != m.Version() {
			snap := m.Snapshot()
			c.overlays.mask = colorutil.Tint(snap.Image, colorutil.MaskInk, maskAlpha)
			c.overlays.maskVer, c.overlays.hasMask = snap.Version, true
		}
		draw.NearestNeighbor.Scale(frame, dr, c.overlays.mask, c.overlays.mask.Rect, draw.Over, nil)
	}
}

// drawSeams outlines every face, labels it, and highlights the current one.
func (c *Controller) drawSeams(dc *gg.Context, l *unfold.Layout, vp Viewport) {
	src := labelFont()
	for _, f := range l.PresentFaces() {
		r := vp.RectToView(l.FaceRects[f])
		dc.SetLineWidth(1)
		setColor(dc, colorutil.Seam, 1)
		dc.DrawRectangle(r.X+0.5, r.Y+0.5, math.Max(r.Width-1, 0), math.Max(r.Height-1, 0))
		_ = dc.Stroke()

		if f == c.currentFace {
			dc.SetLineWidth(3)
			setColor(dc, colorutil.Highlight, 1)
			dc.DrawRectangle(r.X+1.5, r.Y+1.5, math.Max(r.Width-3, 0), math.Max(r.Height-3, 0))
			_ = dc.Stroke()
		}

		if src == nil || r.Width < 12 || r.Height < 12 {
			continue
		}
		size := math.Min(math.Max(math.Min(r.Width, r.Height)*0.18, 9), 28)
		dc.SetFont(src.Face(size))
		setColor(dc, colorutil.White, 0.9)
		dc.DrawStringAnchored(string(f), r.X+r.Width/2, r.Y+r.Height/2, 0.5, 0.5)
	}
}

// drawHinges draws the dashed fold lines between adjacent cells.
func (c *Controller) drawHinges(dc *gg.Context, l *unfold.Layout, vp Viewport) {
	hinges := l.Hinges()
	if len(hinges) == 0 {
		return
	}
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	setColor(dc, colorutil.Hinge, 1)
	for _, hg := range hinges {
		a := vp.ToView(geometry.NewPoint2D(hg.X1, hg.Y1))
		b := vp.ToView(geometry.NewPoint2D(hg.X2, hg.Y2))
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
	}
	_ = dc.Stroke()
	dc.ClearDash()
}

func (c *Controller) drawFooter(dc *gg.Context, h int) {
	src := labelFont()
	if c.footer == "" || src == nil {
		return
	}
	dc.SetFont(src.Face(12))
	setColor(dc, colorutil.Footer, 1)
	dc.DrawStringAnchored(c.footer, 8, float64(h)-6, 0, 0)
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
