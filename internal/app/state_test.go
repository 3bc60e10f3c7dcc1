package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

func newState(t *testing.T) *State {
	t.Helper()
	s, err := NewState(DefaultSettings())
	require.NoError(t, err)
	return s
}

func record(s *State, ev EventType) *[]any {
	var got []any
	s.On(ev, func(data any) { got = append(got, data) })
	return &got
}

func faceCenter(l *unfold.Layout, f unfold.Face) geometry.Point2D {
	r := l.FaceRects[f]
	return geometry.NewPoint2D(float64(r.X)+float64(r.Width)/2, float64(r.Y)+float64(r.Height)/2)
}

func TestNewStateBuffersMatchLayout(t *testing.T) {
	s := newState(t)
	l := s.Layout()
	assert.Equal(t, l.Width, s.Mask().Bounds().Dx())
	assert.Equal(t, l.Height, s.PatternLayer().Bounds().Dy())
	assert.Equal(t, unfold.PresetCross, l.Template.Name)
	assert.InDelta(t, 20.0, s.BrushRadiusPx(), 1e-9)

	_, err := NewState(Settings{Dims: unfold.Dims{X: 1, Y: 1, Z: 1}, Resolution: 1, Template: unfold.CrossTemplate()})
	assert.ErrorIs(t, err, ErrInvalidBrush)
}

func TestLayoutChangeRecreatesBuffers(t *testing.T) {
	s := newState(t)
	layouts := record(s, EventLayoutChanged)

	s.Mask().PaintCircle(float64(s.Layout().FaceRects[unfold.FacePZ].X)+20, float64(s.Layout().FaceRects[unfold.FacePZ].Y)+20, 5, true)
	require.Positive(t, s.Mask().PaintedCount())
	before := s.Version()

	require.NoError(t, s.SetResolution(2))
	require.Len(t, *layouts, 1)
	l := (*layouts)[0].(*unfold.Layout)
	assert.Equal(t, l, s.Layout())
	assert.Equal(t, l.Width, s.Mask().Bounds().Dx())
	assert.Zero(t, s.Mask().PaintedCount())
	assert.Greater(t, s.Version(), before)
	assert.True(t, s.Modified())

	// Same inputs hit the cache and change nothing.
	_, missesBefore := s.LayoutCacheStats()
	require.NoError(t, s.SetResolution(2))
	assert.Len(t, *layouts, 1)
	hits, misses := s.LayoutCacheStats()
	assert.Positive(t, hits)
	assert.Equal(t, missesBefore, misses)
}

func TestRejectedSettingsKeepState(t *testing.T) {
	s := newState(t)
	prev := s.Layout()

	err := s.SetDims(unfold.Dims{X: -1, Y: 2, Z: 3})
	assert.ErrorIs(t, err, unfold.ErrInvalidDimensions)
	assert.ErrorIs(t, s.SetMargin(-4), unfold.ErrInvalidDimensions)
	assert.ErrorIs(t, s.SetBrushSize(0), ErrInvalidBrush)
	assert.ErrorIs(t, s.SetTemplateName("no-such"), ErrUnknownTemplate)
	assert.ErrorIs(t, s.SetTemplate(unfold.GridTemplate{Name: "dup", Cells: [][]unfold.Face{{unfold.FacePX, unfold.FacePX}}}), unfold.ErrDuplicateFace)

	assert.Same(t, prev, s.Layout())
	assert.Equal(t, DefaultSettings().Dims, s.Settings().Dims)
}

func TestBrushChangeKeepsMask(t *testing.T) {
	s := newState(t)
	brushes := record(s, EventBrushChanged)
	layouts := record(s, EventLayoutChanged)

	c := faceCenter(s.Layout(), unfold.FacePX)
	s.Mask().PaintCircle(c.X, c.Y, 4, true)
	painted := s.Mask().PaintedCount()

	require.NoError(t, s.SetBrushSize(2.5))
	assert.Equal(t, []any{2.5}, *brushes)
	assert.Empty(t, *layouts)
	assert.Equal(t, painted, s.Mask().PaintedCount())
	assert.InDelta(t, 10.0, s.BrushRadiusPx(), 1e-9)
}

func TestPatternEditing(t *testing.T) {
	s := newState(t)
	changed := record(s, EventPatternsChanged)
	pz := faceCenter(s.Layout(), unfold.FacePZ)

	fp, err := s.AddPattern(unfold.FacePZ, pattern.KindBandH)
	require.NoError(t, err)
	assert.Equal(t, "p1", fp.ID)
	assert.Equal(t, []any{unfold.FacePZ}, *changed)
	assert.Equal(t, pattern.Covered, s.PatternLayer().At(int(pz.X), int(pz.Y)))

	second, err := s.AddPattern(unfold.FacePZ, pattern.KindBandV)
	require.NoError(t, err)
	assert.Equal(t, "p2", second.ID)

	found, err := s.MovePattern(unfold.FacePZ, "p2", -1)
	require.NoError(t, err)
	require.True(t, found)
	list := s.FacePatterns(unfold.FacePZ)
	assert.Equal(t, "p2", list[0].ID)

	second.Op = pattern.OpErase
	found, err = s.UpdatePattern(unfold.FacePZ, second)
	require.NoError(t, err)
	require.True(t, found)
	// p2 now erases first, then p1 paints the band back over the center.
	assert.Equal(t, pattern.Covered, s.PatternLayer().At(int(pz.X), int(pz.Y)))

	found, err = s.RemovePattern(unfold.FacePZ, "p1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pattern.Uncovered, s.PatternLayer().At(int(pz.X), int(pz.Y)))

	_, err = s.AddFacePattern(unfold.FacePZ, pattern.FacePattern{Kind: "spiral", Op: pattern.OpPaint, Fill: pattern.FillInside})
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)

	require.NoError(t, s.ClearFacePatterns(unfold.FacePZ))
	assert.Empty(t, s.FacePatterns(unfold.FacePZ))
	assert.Empty(t, s.Patterns())
}

func TestPatternsFollowLayoutChanges(t *testing.T) {
	s := newState(t)
	_, err := s.AddPattern(unfold.FacePX, pattern.KindWrapCross)
	require.NoError(t, err)

	require.NoError(t, s.SetTemplateName(unfold.PresetStrip))
	c := faceCenter(s.Layout(), unfold.FacePX)
	assert.Equal(t, pattern.Covered, s.PatternLayer().At(int(c.X), int(c.Y)))
}

func TestPatternsOnMissingFace(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.SetTemplate(unfold.GridTemplate{Name: "pair", Cells: [][]unfold.Face{{unfold.FacePX, unfold.FaceNX}}}))

	_, err := s.AddPattern(unfold.FacePZ, pattern.KindBandH)
	assert.ErrorIs(t, err, ErrFaceNotInLayout)
}

func TestStrokeNotifiesState(t *testing.T) {
	s := newState(t)
	edits := record(s, EventMaskEdited)

	stroke := mask.NewStroke(s.Mask(), s.Layout(), s.BrushRadiusPx(), true, s.MaskEdited)
	c := faceCenter(s.Layout(), unfold.FaceNY)
	stroke.Begin(c)
	stroke.Move(c.Add(geometry.NewPoint2D(30, 0)))
	stroke.End()

	require.Len(t, *edits, 2)
	assert.Equal(t, s.Version(), (*edits)[1])
	assert.Equal(t, mask.Painted, s.Mask().At(int(c.X), int(c.Y)))

	s.ClearMask()
	assert.Zero(t, s.Mask().PaintedCount())
	assert.Len(t, *edits, 3)
}

func TestSelectFace(t *testing.T) {
	s := newState(t)
	got := record(s, EventFaceSelected)
	s.SelectFace(unfold.FaceNZ)
	assert.Equal(t, unfold.FaceNZ, s.CurrentFace())
	assert.Equal(t, []any{unfold.FaceNZ}, *got)
}

func TestProjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "design.boxnet")

	s := newState(t)
	require.NoError(t, s.SetDims(unfold.Dims{X: 30, Y: 20, Z: 10}))
	require.NoError(t, s.SetTemplateName(unfold.PresetTShape))
	_, err := s.AddPattern(unfold.FacePY, pattern.KindCornerPads)
	require.NoError(t, err)
	require.NoError(t, s.SaveProject(path))
	assert.False(t, s.Modified())
	assert.Equal(t, path, s.ProjectPath())

	loaded := newState(t)
	loadedEvents := record(loaded, EventProjectLoaded)
	require.NoError(t, loaded.LoadProject(path))

	assert.Equal(t, s.Settings().Dims, loaded.Settings().Dims)
	assert.Equal(t, unfold.PresetTShape, loaded.Layout().Template.Name)
	assert.Equal(t, s.Patterns(), loaded.Patterns())
	assert.False(t, loaded.Modified())
	assert.Len(t, *loadedEvents, 1)

	// New IDs continue after the loaded ones.
	fp, err := loaded.AddPattern(unfold.FacePY, pattern.KindBandH)
	require.NoError(t, err)
	assert.Equal(t, "p2", fp.ID)
}

func TestNewProjectResetsDesign(t *testing.T) {
	s := newState(t)
	_, err := s.AddPattern(unfold.FacePZ, pattern.KindBorderOnly)
	require.NoError(t, err)
	s.SelectFace(unfold.FacePZ)
	c := faceCenter(s.Layout(), unfold.FacePZ)
	s.Mask().PaintCircle(c.X, c.Y, 5, true)
	loaded := record(s, EventProjectLoaded)

	next := DefaultSettings()
	next.Template = unfold.CompactTemplate()
	require.NoError(t, s.NewProject(next))

	assert.Equal(t, unfold.PresetCompact, s.Layout().Template.Name)
	assert.Empty(t, s.Patterns())
	assert.Zero(t, s.Mask().PaintedCount())
	assert.Equal(t, unfold.FaceNone, s.CurrentFace())
	assert.False(t, s.Modified())
	assert.Empty(t, s.ProjectPath())
	assert.Equal(t, []any{""}, *loaded)

	fp, err := s.AddPattern(unfold.FacePX, pattern.KindBandH)
	require.NoError(t, err)
	assert.Equal(t, "p1", fp.ID)
}

func TestRejectedSettingsDoNotWipeMask(t *testing.T) {
	s := newState(t)
	layouts := record(s, EventLayoutChanged)

	c := faceCenter(s.Layout(), unfold.FacePX)
	s.Mask().PaintCircle(c.X, c.Y, 4, true)
	painted := s.Mask().PaintedCount()
	require.Positive(t, painted)

	for m := -1; m >= -20; m-- {
		require.ErrorIs(t, s.SetMargin(m), unfold.ErrInvalidDimensions)
	}
	require.NoError(t, s.SetBrushSize(2.5))

	assert.Empty(t, *layouts)
	assert.Equal(t, painted, s.Mask().PaintedCount())
}

func TestRenamedTemplateKeepsMask(t *testing.T) {
	s := newState(t)
	layouts := record(s, EventLayoutChanged)

	c := faceCenter(s.Layout(), unfold.FacePZ)
	s.Mask().PaintCircle(c.X, c.Y, 4, true)
	painted := s.Mask().PaintedCount()
	require.Positive(t, painted)

	twin := s.Settings().Template.Clone()
	twin.Name = "my-cross"
	require.NoError(t, s.SetTemplate(twin))

	require.Len(t, *layouts, 1)
	assert.Equal(t, "my-cross", s.Layout().Template.Name)
	assert.Equal(t, painted, s.Mask().PaintedCount())
}
