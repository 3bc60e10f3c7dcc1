package preview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

var box = unfold.Dims{X: 100, Y: 60, Z: 40}

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestMeshVerticesAndEdges(t *testing.T) {
	m := NewMesh(box)

	for _, v := range m.Vertices {
		assert.Equal(t, 50.0, math.Abs(v.X))
		assert.Equal(t, 30.0, math.Abs(v.Y))
		assert.Equal(t, 20.0, math.Abs(v.Z))
	}
	assertVec(t, r3.Vec{X: 50, Y: 30, Z: 20}, m.Vertices[7])

	seen := map[[2]int]bool{}
	for _, e := range m.Edges {
		diff := e[0] ^ e[1]
		assert.Contains(t, []int{1, 2, 4}, diff, "edge %v must differ along one axis", e)
		assert.False(t, seen[e], "duplicate edge %v", e)
		seen[e] = true
	}
	assert.Len(t, seen, 12)
}

func TestMeshQuadsMatchFootprints(t *testing.T) {
	m := NewMesh(box)

	for i, f := range unfold.Faces() {
		q, ok := m.Quad(f)
		require.True(t, ok)
		assert.Equal(t, m.Quads[i], q)

		w, h := f.Footprint(box)
		u := r3.Sub(q.Corners[1], q.Corners[0])
		v := r3.Sub(q.Corners[3], q.Corners[0])
		assert.InDelta(t, w, r3.Norm(u), 1e-9, "%s width", f)
		assert.InDelta(t, h, r3.Norm(v), 1e-9, "%s height", f)

		// Seen from outside, right cross down points into the box.
		assertVec(t, r3.Scale(-1, q.Normal), r3.Unit(r3.Cross(u, v)))
		assert.Greater(t, r3.Dot(q.Center(), q.Normal), 0.0, "%s center lies on its outward side", f)
		axis := [3]float64{q.Normal.X, q.Normal.Y, q.Normal.Z}[f.Axis()]
		assert.Equal(t, f.Sign(), axis, "%s normal", f)
	}

	_, ok := m.Quad(unfold.FaceNone)
	assert.False(t, ok)
}

func TestMeshRadius(t *testing.T) {
	m := NewMesh(box)
	assert.InDelta(t, r3.Norm(m.Vertices[7]), m.Radius(), 1e-9)
}

func TestFittedCameraFramesTheBox(t *testing.T) {
	m := NewMesh(box)
	cam := FitCamera(m.Radius(), DefaultFOV)
	rot := DefaultOrientation().Rotator()

	const size = 200
	for _, v := range m.Vertices {
		x, y, _, ok := cam.Project(rot(v), size, size)
		require.True(t, ok)
		assert.True(t, x > 0 && x < size && y > 0 && y < size, "vertex %v projects to (%g, %g)", v, x, y)
	}
}

func TestFitCameraDefaults(t *testing.T) {
	c := FitCamera(0, 0)
	assert.Equal(t, DefaultFOV, c.FOV)
	assert.InDelta(t, framePadding/math.Sin(DefaultFOV/2), c.Distance, 1e-9)

	_, _, _, ok := c.Project(r3.Vec{Z: c.Distance}, 10, 10)
	assert.False(t, ok, "point at the eye is behind the near plane")
}

func TestOrientationStandsBoxUp(t *testing.T) {
	rot := Orientation{}.Rotator()
	assertVec(t, r3.Vec{Y: 1}, rot(r3.Vec{Z: 1}))
	assertVec(t, r3.Vec{Z: 1}, rot(r3.Vec{Y: -1}))
	assertVec(t, r3.Vec{X: 1}, rot(r3.Vec{X: 1}))

	cam := FitCamera(1, DefaultFOV)
	_, y, _, ok := cam.Project(rot(r3.Vec{Z: 1}), 100, 100)
	require.True(t, ok)
	assert.Less(t, y, 50.0, "+Z is drawn above the center")
}

func TestOrientationTurn(t *testing.T) {
	o := Orientation{}.Turn(0, 10)
	assert.InDelta(t, maxPitch, o.Pitch, 1e-12)
	o = o.Turn(0, -20)
	assert.InDelta(t, -maxPitch, o.Pitch, 1e-12)

	o = Orientation{Yaw: 3}.Turn(1, 0)
	assert.InDelta(t, 4-2*math.Pi, o.Yaw, 1e-12)
}
