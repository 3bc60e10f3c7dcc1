package preview

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

func crossLayout(t *testing.T, d unfold.Dims, margin int) *unfold.Layout {
	t.Helper()
	l, err := unfold.BuildLayout(d, 1, margin, unfold.CrossTemplate())
	require.NoError(t, err)
	return l
}

func snapshots(l *unfold.Layout) (pattern.Snapshot, mask.Snapshot) {
	return pattern.NewLayer(l.Width, l.Height).Snapshot(), mask.NewStore(l.Width, l.Height).Snapshot()
}

func TestSyncBakesOnlyWhenInputsChange(t *testing.T) {
	s := NewSynchronizer(32)
	l := crossLayout(t, box, 10)
	pat, msk := snapshots(l)

	require.True(t, s.NeedsSync(l, 1))
	assert.True(t, s.Sync(l, pat, msk, 1))
	for _, f := range unfold.Faces() {
		assert.NotNil(t, s.Texture(f), "%s texture", f)
	}
	assert.False(t, s.NeedsSync(l, 1))
	assert.False(t, s.Sync(l, pat, msk, 1))
	bakes, meshes := s.Stats()
	assert.Equal(t, 1, bakes)
	assert.Equal(t, 1, meshes)

	assert.True(t, s.Sync(l, pat, msk, 2), "version change")

	moved := crossLayout(t, box, 20)
	pat, msk = snapshots(moved)
	assert.True(t, s.Sync(moved, pat, msk, 2), "face rects moved")
	bakes, meshes = s.Stats()
	assert.Equal(t, 3, bakes)
	assert.Equal(t, 1, meshes, "same dims keep the mesh")

	bigger := crossLayout(t, unfold.Dims{X: 120, Y: 60, Z: 40}, 20)
	pat, msk = snapshots(bigger)
	assert.True(t, s.Sync(bigger, pat, msk, 2))
	_, meshes = s.Stats()
	assert.Equal(t, 2, meshes)
	assert.Equal(t, bigger.Dims, s.Mesh().Dims)
	assert.InDelta(t, FitCamera(s.Mesh().Radius(), DefaultFOV).Distance, s.Camera().Distance, 1e-9)
}

func TestSyncToleratesMismatchedSnapshots(t *testing.T) {
	s := NewSynchronizer(16)
	l := crossLayout(t, box, 10)
	other := crossLayout(t, box, 30)
	pat, msk := snapshots(other)

	assert.True(t, s.Sync(l, pat, msk, 1))
	assert.NotNil(t, s.Texture(unfold.FacePZ))
	assert.False(t, s.Sync(nil, pat, msk, 2))
}

func TestDisposeStopsSync(t *testing.T) {
	s := NewSynchronizer(16)
	l := crossLayout(t, box, 10)
	pat, msk := snapshots(l)
	require.True(t, s.Sync(l, pat, msk, 1))

	s.Dispose()
	s.Dispose()
	assert.True(t, s.Disposed())
	assert.Nil(t, s.Mesh())
	assert.Nil(t, s.Texture(unfold.FacePZ))
	assert.False(t, s.NeedsSync(l, 2))
	assert.False(t, s.Sync(l, pat, msk, 2))
}

func TestDragPausesAutoRotation(t *testing.T) {
	s := NewSynchronizer(16)
	s.SetOrientation(Orientation{})

	s.Tick(time.Second)
	assert.InDelta(t, AutoRotateRate, s.Orientation().Yaw, 1e-9)

	s.DragStart()
	require.True(t, s.Dragging())
	s.Tick(time.Second)
	assert.InDelta(t, AutoRotateRate, s.Orientation().Yaw, 1e-9, "no spin while dragging")

	s.Drag(90, -36)
	o := s.Orientation()
	assert.InDelta(t, AutoRotateRate+math.Pi/4, o.Yaw, 1e-9)
	assert.InDelta(t, -math.Pi/10, o.Pitch, 1e-9)

	s.DragEnd()
	assert.False(t, s.Dragging())
	s.Tick(500 * time.Millisecond)
	assert.InDelta(t, 1.5*AutoRotateRate+math.Pi/4, s.Orientation().Yaw, 1e-9)
}
