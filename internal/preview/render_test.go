package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

func TestDrawWithoutMeshClearsToBackground(t *testing.T) {
	r := NewRenderer(20, 10)
	img := r.Draw(nil, nil, Orientation{}, Camera{})
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			require.Equal(t, colorutil.Background, img.RGBAAt(x, y))
		}
	}
}

func TestDrawShowsFrontFace(t *testing.T) {
	m := NewMesh(box)
	cam := FitCamera(m.Radius(), DefaultFOV)
	r := NewRenderer(160, 160)

	// Standing up turns -Y toward the camera.
	img := r.Draw(m, nil, Orientation{}, cam)
	c := img.RGBAAt(80, 80)
	flat := colorutil.FaceColor(unfold.FaceNY.Index())
	shade := ambient + diffuse*r.light.Z
	assert.InDelta(t, float64(flat.G)*shade, float64(c.G), 1.5)
	assert.InDelta(t, float64(flat.B)*shade, float64(c.B), 1.5)

	assert.Equal(t, colorutil.Background, img.RGBAAt(0, 0))
}

func TestDrawSamplesTextures(t *testing.T) {
	s := NewSynchronizer(32)
	l := crossLayout(t, box, 10)
	pat, msk := snapshots(l)
	require.True(t, s.Sync(l, pat, msk, 1))
	s.SetOrientation(Orientation{})

	r := NewRenderer(160, 160)
	c := s.Render(r).RGBAAt(80, 80)
	flat := colorutil.FaceColor(unfold.FaceNY.Index())
	assert.NotEqual(t, flat.G, c.G)
	assert.Greater(t, c.R, uint8(120), "light texture base")
}

func TestTriangleDepthTest(t *testing.T) {
	r := NewRenderer(10, 10)
	r.clear()
	near := colorutil.MaskInk
	far := colorutil.PatternInk
	tri := func(z float64) (screenVertex, screenVertex, screenVertex) {
		return screenVertex{x: 0, y: 0, z: z}, screenVertex{x: 10, y: 0, z: z}, screenVertex{x: 0, y: 10, z: z}
	}

	a, b, c := tri(1)
	r.triangle(a, b, c, nil, near, 1)
	a, b, c = tri(2)
	r.triangle(a, b, c, nil, far, 1)
	assert.Equal(t, near, r.frame.RGBAAt(2, 2))

	a, b, c = tri(0.5)
	r.triangle(a, b, c, nil, far, 1)
	assert.Equal(t, far, r.frame.RGBAAt(2, 2))
	assert.Equal(t, colorutil.Background, r.frame.RGBAAt(8, 8), "outside the triangle")
}

func TestRendererResize(t *testing.T) {
	r := NewRenderer(0, -3)
	w, h := r.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	r.Resize(40, 30)
	img := r.Draw(nil, nil, Orientation{}, Camera{})
	assert.Equal(t, 40, img.Rect.Dx())
	assert.Len(t, r.depth, 1200)
}
