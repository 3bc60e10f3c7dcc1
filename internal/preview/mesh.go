// Package preview keeps a textured 3D cuboid in sync with the atlas and
// renders it in software: mesh and camera, per-face texture baking,
// orientation with drag and auto-rotation, a z-buffered rasterizer, and the
// frame loop.
package preview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// Quad is one face of the cuboid. Corners run top-left, top-right,
// bottom-right, bottom-left as seen from outside, matching texture
// coordinates (0,0), (1,0), (1,1), (0,1).
type Quad struct {
	Face    unfold.Face
	Normal  r3.Vec
	Corners [4]r3.Vec
}

// Center returns the quad's midpoint.
func (q Quad) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(q.Corners[0], q.Corners[2]))
}

// Mesh is a cuboid centered at the origin with one unit per physical unit.
type Mesh struct {
	Dims     unfold.Dims
	Vertices [8]r3.Vec
	Quads    [6]Quad
	Edges    [12][2]int
}

// faceFrame gives, per face, the outward normal, the texture's u direction
// and the texture's downward v direction.
var faceFrame = map[unfold.Face][3]r3.Vec{
	unfold.FacePX: {{X: 1}, {Y: 1}, {Z: -1}},
	unfold.FaceNX: {{X: -1}, {Y: -1}, {Z: -1}},
	unfold.FacePY: {{Y: 1}, {X: -1}, {Z: -1}},
	unfold.FaceNY: {{Y: -1}, {X: 1}, {Z: -1}},
	unfold.FacePZ: {{Z: 1}, {X: 1}, {Y: -1}},
	unfold.FaceNZ: {{Z: -1}, {X: 1}, {Y: 1}},
}

// NewMesh builds the cuboid for d. Vertex i has bit 0, 1, 2 selecting the
// positive X, Y, Z side.
func NewMesh(d unfold.Dims) *Mesh {
	half := r3.Vec{X: d.X / 2, Y: d.Y / 2, Z: d.Z / 2}
	m := &Mesh{Dims: d}
	for i := range m.Vertices {
		v := r3.Vec{X: -half.X, Y: -half.Y, Z: -half.Z}
		if i&1 != 0 {
			v.X = half.X
		}
		if i&2 != 0 {
			v.Y = half.Y
		}
		if i&4 != 0 {
			v.Z = half.Z
		}
		m.Vertices[i] = v
	}

	n := 0
	for i := range m.Vertices {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				m.Edges[n] = [2]int{i, i | bit}
				n++
			}
		}
	}

	for i, f := range unfold.Faces() {
		fr := faceFrame[f]
		normal, u, v := fr[0], fr[1], fr[2]
		center := hadamard(normal, half)
		hu := r3.Scale(math.Abs(r3.Dot(u, half)), u)
		hv := r3.Scale(math.Abs(r3.Dot(v, half)), v)
		m.Quads[i] = Quad{
			Face:   f,
			Normal: normal,
			Corners: [4]r3.Vec{
				r3.Sub(r3.Sub(center, hu), hv),
				r3.Sub(r3.Add(center, hu), hv),
				r3.Add(r3.Add(center, hu), hv),
				r3.Add(r3.Sub(center, hu), hv),
			},
		}
	}
	return m
}

// Radius returns the bounding sphere radius.
func (m *Mesh) Radius() float64 {
	return math.Sqrt(m.Dims.X*m.Dims.X+m.Dims.Y*m.Dims.Y+m.Dims.Z*m.Dims.Z) / 2
}

// Quad returns the quad for face.
func (m *Mesh) Quad(f unfold.Face) (Quad, bool) {
	i := f.Index()
	if i < 0 {
		return Quad{}, false
	}
	return m.Quads[i], true
}

func hadamard(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}
