package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

func TestFitViewport(t *testing.T) {
	vp := NewViewport(FitZoom(), 1000, 600, 480, 240, FitMargin)

	assert.InDelta(t, 968.0/480.0, vp.Scale, 1e-9)
	assert.Equal(t, 16.0, vp.OffsetX)
	assert.Equal(t, 58.0, vp.OffsetY)
}

func TestFixedViewportPinsLargeContent(t *testing.T) {
	vp := NewViewport(FixedZoom(3), 200, 100, 480, 240, FitMargin)
	assert.Equal(t, 3.0, vp.Scale)
	assert.Equal(t, 16.0, vp.OffsetX)
	assert.Equal(t, 16.0, vp.OffsetY)

	w, h := vp.ContentSize(480, 240, FitMargin)
	assert.Equal(t, 1472, w)
	assert.Equal(t, 752, h)

	small := NewViewport(FixedZoom(0.5), 400, 400, 480, 240, FitMargin)
	assert.Equal(t, 80.0, small.OffsetX)
	assert.Equal(t, 140.0, small.OffsetY)
}

func TestViewportRoundTrip(t *testing.T) {
	vp := Viewport{Scale: 1.75, OffsetX: 23, OffsetY: -9}
	for _, p := range []geometry.Point2D{{X: 0, Y: 0}, {X: 100.5, Y: 37.25}, {X: -4, Y: 900}} {
		v := vp.ToView(p)
		back := vp.ToAtlas(v.X, v.Y)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}

	r := vp.RectToView(geometry.RectInt{X: 10, Y: 20, Width: 4, Height: 8})
	assert.InDelta(t, 40.5, r.X, 1e-9)
	assert.InDelta(t, 26.0, r.Y, 1e-9)
	assert.InDelta(t, 7.0, r.Width, 1e-9)
	assert.InDelta(t, 14.0, r.Height, 1e-9)
}

func TestParseZoom(t *testing.T) {
	tests := []struct {
		in   string
		want Zoom
	}{
		{"fit", FitZoom()},
		{" FIT ", FitZoom()},
		{"150%", Zoom{Scale: 1.5}},
		{"2", Zoom{Scale: 2}},
		{"1000", Zoom{Scale: maxZoom}},
	}
	for _, tt := range tests {
		got, err := ParseZoom(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"abc", "-1", "0%"} {
		_, err := ParseZoom(bad)
		assert.ErrorIs(t, err, ErrInvalidZoom, bad)
	}

	assert.Equal(t, "fit", FitZoom().String())
	assert.Equal(t, "150%", FixedZoom(1.5).String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Pattern-Select")
	require.NoError(t, err)
	assert.Equal(t, ModePatternSelect, m)

	_, err = ParseMode("smudge")
	assert.Error(t, err)
	assert.Len(t, Modes(), 3)
}

func TestFineGridVisible(t *testing.T) {
	assert.True(t, FineGridVisible(4, 0.0625))
	assert.False(t, FineGridVisible(4, 0.04))
	assert.True(t, FineGridVisible(1, 1))
}
