package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

type fixture struct {
	ctrl     *Controller
	layout   *unfold.Layout
	store    *mask.Store
	layer    *pattern.Layer
	edits    []uint64
	selected []unfold.Face
}

// newFixture lays out a 100x60x40 box on the compact template at 4 px/unit
// and sizes the view so that fit zoom is exactly 1 with a FitMargin offset.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	l, err := unfold.BuildLayout(unfold.Dims{X: 100, Y: 60, Z: 40}, 4, 10, unfold.CompactTemplate())
	require.NoError(t, err)

	f := &fixture{layout: l, store: mask.NewStore(l.Width, l.Height), layer: pattern.NewLayer(l.Width, l.Height)}
	f.ctrl = NewController(Config{
		Mask:           f.store,
		Patterns:       f.layer,
		OnEdited:       func(v uint64) { f.edits = append(f.edits, v) },
		OnFaceSelected: func(face unfold.Face) { f.selected = append(f.selected, face) },
	})
	f.ctrl.SetLayout(l)
	f.ctrl.Resize(l.Width+2*FitMargin, l.Height+2*FitMargin)
	f.ctrl.SetBrushSize(5)

	vp := f.ctrl.Viewport()
	require.Equal(t, 1.0, vp.Scale)
	require.Equal(t, float64(FitMargin), vp.OffsetX)
	return f
}

// view converts atlas coordinates to view coordinates for the fixture.
func view(x, y float64) (float64, float64) {
	return x + FitMargin, y + FitMargin
}

func TestPatternSelectReportsFaceAndPaintsNothing(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetMode(ModePatternSelect)

	f.ctrl.Press(view(800, 100)) // inside +Z {670,10,400,240}
	f.ctrl.Move(view(820, 100))
	f.ctrl.Release()

	assert.Equal(t, []unfold.Face{unfold.FacePZ}, f.selected)
	assert.Zero(t, f.store.PaintedCount())
	assert.Zero(t, f.store.Version())
	assert.Empty(t, f.edits)

	f.ctrl.Press(view(20, 200)) // margin gap
	assert.Len(t, f.selected, 1)
}

func TestPaintStroke(t *testing.T) {
	f := newFixture(t)
	assert.InDelta(t, 20.0, f.ctrl.BrushRadiusPx(), 1e-9)

	f.ctrl.Press(view(700, 60))
	assert.True(t, f.ctrl.Stroking())
	f.ctrl.Move(view(780, 60))
	f.ctrl.Release()
	assert.False(t, f.ctrl.Stroking())

	assert.Len(t, f.edits, 2)
	assert.Equal(t, f.store.Version(), f.edits[1])
	for x := 700; x <= 780; x += 5 {
		assert.Equal(t, mask.Painted, f.store.At(x, 60), "x=%d", x)
	}

	f.ctrl.SetMode(ModeErase)
	f.ctrl.Press(view(740, 60))
	f.ctrl.Release()
	assert.Equal(t, mask.Cleared, f.store.At(740, 60))
	assert.Equal(t, mask.Painted, f.store.At(700, 60))
}

func TestCancelEndsStroke(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Press(view(700, 60))
	painted := f.store.PaintedCount()

	f.ctrl.Cancel()
	f.ctrl.Move(view(900, 60))
	assert.Equal(t, painted, f.store.PaintedCount(), "pixels painted before cancel stay, nothing after")
	assert.False(t, f.ctrl.Stroking())
}

func TestModeChangeEndsStroke(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Press(view(700, 60))
	f.ctrl.SetMode(ModePatternSelect)
	assert.False(t, f.ctrl.Stroking())

	before := f.store.Version()
	f.ctrl.Move(view(760, 60))
	assert.Equal(t, before, f.store.Version())
}

func TestPressOutsideFacesIsNoop(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Press(view(5, 5))
	f.ctrl.Move(view(6, 7))
	f.ctrl.Release()
	assert.Zero(t, f.store.PaintedCount())
	assert.Empty(t, f.edits)
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestFrameLayers(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetFooter("100 x 60 x 40")

	frame := f.ctrl.Frame()
	require.Equal(t, image.Rect(0, 0, f.layout.Width+2*FitMargin, f.layout.Height+2*FitMargin), frame.Rect)
	assert.Same(t, frame, f.ctrl.Frame(), "unchanged frame is reused")

	outside := rgbaAt(frame, 2, 2)
	assert.Equal(t, colorutil.Black.R, outside.R)
	assert.Equal(t, uint8(255), outside.A)

	f.ctrl.Press(view(700, 40))
	f.ctrl.Release()
	painted := f.ctrl.Frame()
	assert.NotSame(t, frame, painted, "mask edit invalidates the frame")

	vx, vy := view(700, 40)
	px := rgbaAt(painted, int(vx), int(vy))
	assert.Greater(t, px.R, px.G)
	assert.Greater(t, px.R, px.B)

	// The +Z face fill away from the paint is bluish.
	fx, fy := view(1000, 200)
	face := rgbaAt(painted, int(fx), int(fy))
	assert.Greater(t, face.B, face.R)
}

func TestFramePatternLayer(t *testing.T) {
	f := newFixture(t)
	rect := f.layout.FaceRects[unfold.FacePX]
	f.layer.RenderPattern(rect, pattern.FacePattern{
		Kind: pattern.KindBorderOnly, Params: pattern.Params{BorderWidth: 10},
		Op: pattern.OpPaint, Fill: pattern.FillInside,
	}, f.layout.Resolution)

	frame := f.ctrl.Frame()
	vx, vy := view(float64(rect.X+20), float64(rect.Y+20))
	px := rgbaAt(frame, int(vx), int(vy))
	assert.Greater(t, px.B, px.R)
	assert.Greater(t, px.B, uint8(150))
}

func TestFrameWithoutLayout(t *testing.T) {
	c := NewController(Config{})
	c.Resize(10, 10)
	frame := c.Frame()
	assert.Equal(t, 10, frame.Rect.Dx())
	c.Press(5, 5)
	assert.False(t, c.Stroking())
}
