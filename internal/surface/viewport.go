// Package surface implements the interactive atlas surface: the viewport
// mapping atlas pixels to view pixels, the layered frame renderer, and the
// pointer protocol that turns presses and drags into brush strokes or face
// selection.
package surface

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// FitMargin is the view-pixel margin kept around the atlas in fit mode.
const FitMargin = 16

const (
	minZoom = 0.05
	maxZoom = 16.0
)

// ErrInvalidZoom is returned by ParseZoom.
var ErrInvalidZoom = errors.New("invalid zoom")

// Zoom selects between fitting the atlas into the view and a fixed scale.
type Zoom struct {
	Fit   bool
	Scale float64
}

// FitZoom fits the atlas into the view.
func FitZoom() Zoom { return Zoom{Fit: true} }

// FixedZoom uses a constant scale, clamped to the supported range.
func FixedZoom(scale float64) Zoom {
	return Zoom{Scale: math.Min(math.Max(scale, minZoom), maxZoom)}
}

func (z Zoom) String() string {
	if z.Fit {
		return "fit"
	}
	return strconv.FormatFloat(z.Scale*100, 'f', -1, 64) + "%"
}

// ParseZoom accepts "fit", a percentage such as "150%", or a plain scale
// factor such as "1.5".
func ParseZoom(s string) (Zoom, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "fit" || s == "" {
		return FitZoom(), nil
	}
	div := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		div = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return Zoom{}, fmt.Errorf("%w: %q", ErrInvalidZoom, s)
	}
	return FixedZoom(v / div), nil
}

// Viewport maps atlas pixels to view pixels: view = atlas*Scale + Offset.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewViewport computes the viewport for a view of viewW x viewH showing an
// atlas of atlasW x atlasH. In fit mode the scale is the largest that keeps
// margin pixels free on every side; in fixed mode the scale is the zoom's.
// The atlas is centered when it is smaller than the view and pinned at
// margin otherwise.
func NewViewport(z Zoom, viewW, viewH, atlasW, atlasH int, margin float64) Viewport {
	scale := z.Scale
	if z.Fit {
		scale = 1
		if atlasW > 0 && atlasH > 0 {
			sx := (float64(viewW) - 2*margin) / float64(atlasW)
			sy := (float64(viewH) - 2*margin) / float64(atlasH)
			scale = math.Min(sx, sy)
		}
		scale = math.Min(math.Max(scale, minZoom), maxZoom)
	}
	if !(scale > 0) {
		scale = 1
	}
	return Viewport{
		Scale:   scale,
		OffsetX: centerOffset(float64(viewW), float64(atlasW)*scale, margin),
		OffsetY: centerOffset(float64(viewH), float64(atlasH)*scale, margin),
	}
}

func centerOffset(view, content, margin float64) float64 {
	if content+2*margin <= view {
		return math.Round((view - content) / 2)
	}
	return margin
}

// Transform returns the atlas-to-view affine transform.
func (v Viewport) Transform() geometry.AffineTransform {
	return geometry.Translation(v.OffsetX, v.OffsetY).Compose(geometry.Scale(v.Scale, v.Scale))
}

// ToView maps an atlas point to view pixels.
func (v Viewport) ToView(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// ToAtlas maps a view point back to atlas pixels.
func (v Viewport) ToAtlas(x, y float64) geometry.Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return geometry.NewPoint2D(x-v.OffsetX, y-v.OffsetY)
	}
	return inv.Apply(geometry.NewPoint2D(x, y))
}

// RectToView maps an atlas pixel rectangle to view space.
func (v Viewport) RectToView(r geometry.RectInt) geometry.Rect {
	tl := v.ToView(geometry.NewPoint2D(float64(r.X), float64(r.Y)))
	return geometry.NewRect(tl.X, tl.Y, float64(r.Width)*v.Scale, float64(r.Height)*v.Scale)
}

// ContentSize returns the view size needed to show the whole atlas at this
// scale with margin on every side.
func (v Viewport) ContentSize(atlasW, atlasH int, margin float64) (w, h int) {
	return int(math.Ceil(float64(atlasW)*v.Scale + 2*margin)), int(math.Ceil(float64(atlasH)*v.Scale + 2*margin))
}
