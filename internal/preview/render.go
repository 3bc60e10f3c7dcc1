package preview

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

const (
	ambient  = 0.45
	diffuse  = 0.55
	edgeBias = 1e-3
)

// Renderer rasterizes a textured mesh into an RGBA frame with a depth
// buffer. It is not safe for concurrent use; Synchronizer.Render serializes
// access.
type Renderer struct {
	w, h  int
	frame *image.RGBA
	depth []float64
	light r3.Vec
}

// NewRenderer creates a renderer for a w x h frame.
func NewRenderer(w, h int) *Renderer {
	r := &Renderer{light: r3.Unit(r3.Vec{X: -0.4, Y: 0.6, Z: 1})}
	r.Resize(w, h)
	return r
}

// Resize changes the frame size. Sizes below one pixel are clamped.
func (r *Renderer) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == r.w && h == r.h && r.frame != nil {
		return
	}
	r.w, r.h = w, h
	r.frame = image.NewRGBA(image.Rect(0, 0, w, h))
	r.depth = make([]float64, w*h)
}

// Size returns the frame size.
func (r *Renderer) Size() (w, h int) { return r.w, r.h }

// screenVertex is a projected corner with its texture coordinate.
type screenVertex struct {
	x, y, z float64
	u, v    float64
}

var quadUV = [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Draw renders mesh under orient as seen by cam and returns the frame. The
// frame is reused by the next Draw. A nil mesh draws the background only.
func (r *Renderer) Draw(mesh *Mesh, textures map[unfold.Face]*image.RGBA, orient Orientation, cam Camera) *image.RGBA {
	r.clear()
	if mesh == nil {
		return r.frame
	}
	rot := orient.Rotator()
	eye := cam.Position()

	for _, q := range mesh.Quads {
		n := rot(q.Normal)
		var corners [4]r3.Vec
		for i, c := range q.Corners {
			corners[i] = rot(c)
		}
		center := r3.Scale(0.5, r3.Add(corners[0], corners[2]))
		if r3.Dot(n, r3.Sub(eye, center)) <= 0 {
			continue
		}

		var sv [4]screenVertex
		visible := true
		for i, c := range corners {
			x, y, z, ok := cam.Project(c, r.w, r.h)
			if !ok {
				visible = false
				break
			}
			sv[i] = screenVertex{x: x, y: y, z: z, u: quadUV[i][0], v: quadUV[i][1]}
		}
		if !visible {
			continue
		}

		shade := ambient + diffuse*math.Max(0, r3.Dot(n, r.light))
		tex := textures[q.Face]
		flat := colorutil.FaceColor(q.Face.Index())
		r.triangle(sv[0], sv[1], sv[2], tex, flat, shade)
		r.triangle(sv[0], sv[2], sv[3], tex, flat, shade)
	}

	edge := colorutil.Edge
	for _, e := range mesh.Edges {
		a, b := rot(mesh.Vertices[e[0]]), rot(mesh.Vertices[e[1]])
		ax, ay, az, okA := cam.Project(a, r.w, r.h)
		bx, by, bz, okB := cam.Project(b, r.w, r.h)
		if !okA || !okB {
			continue
		}
		r.line(ax, ay, az, bx, by, bz, edge)
	}
	return r.frame
}

func (r *Renderer) clear() {
	bg := colorutil.Background
	pix := r.frame.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = bg.R, bg.G, bg.B, 255
	}
	inf := math.Inf(1)
	for i := range r.depth {
		r.depth[i] = inf
	}
}

// triangle fills a triangle with perspective-correct texture lookup and a
// depth test. Samples are taken at pixel centers.
func (r *Renderer) triangle(a, b, c screenVertex, tex *image.RGBA, flat color.RGBA, shade float64) {
	area := edgeFn(a.x, a.y, b.x, b.y, c.x, c.y)
	if math.Abs(area) < 1e-9 {
		return
	}
	minX := max(int(math.Floor(min(a.x, b.x, c.x))), 0)
	maxX := min(int(math.Ceil(max(a.x, b.x, c.x))), r.w-1)
	minY := max(int(math.Floor(min(a.y, b.y, c.y))), 0)
	maxY := min(int(math.Ceil(max(a.y, b.y, c.y))), r.h-1)

	// Attributes divided by depth interpolate linearly in screen space.
	iza, izb, izc := 1/a.z, 1/b.z, 1/c.z

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edgeFn(b.x, b.y, c.x, c.y, px, py) / area
			w1 := edgeFn(c.x, c.y, a.x, a.y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			iz := w0*iza + w1*izb + w2*izc
			z := 1 / iz
			i := y*r.w + x
			if z >= r.depth[i] {
				continue
			}
			r.depth[i] = z

			col := flat
			if tex != nil {
				u := (w0*a.u*iza + w1*b.u*izb + w2*c.u*izc) * z
				v := (w0*a.v*iza + w1*b.v*izb + w2*c.v*izc) * z
				col = sample(tex, u, v)
			}
			o := r.frame.PixOffset(x, y)
			r.frame.Pix[o] = shadeChannel(col.R, shade)
			r.frame.Pix[o+1] = shadeChannel(col.G, shade)
			r.frame.Pix[o+2] = shadeChannel(col.B, shade)
			r.frame.Pix[o+3] = 255
		}
	}
}

// line draws a depth-tested line with Bresenham's algorithm. Depth is
// interpolated along the line and biased toward the viewer so edges win
// against the faces they bound.
func (r *Renderer) line(x0f, y0f, z0, x1f, y1f, z1 float64, c color.RGBA) {
	x0, y0 := int(math.Floor(x0f)), int(math.Floor(y0f))
	x1, y1 := int(math.Floor(x1f)), int(math.Floor(y1f))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	steps := max(dx, -dy)
	err := dx + dy

	for n := 0; ; n++ {
		if x0 >= 0 && x0 < r.w && y0 >= 0 && y0 < r.h {
			t := 0.0
			if steps > 0 {
				t = float64(n) / float64(steps)
			}
			z := z0 + (z1-z0)*t
			i := y0*r.w + x0
			if z*(1-edgeBias) <= r.depth[i] {
				r.depth[i] = z
				o := r.frame.PixOffset(x0, y0)
				r.frame.Pix[o], r.frame.Pix[o+1], r.frame.Pix[o+2], r.frame.Pix[o+3] = c.R, c.G, c.B, 255
			}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func edgeFn(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// sample returns the nearest texel at (u, v) in 0-1.
func sample(tex *image.RGBA, u, v float64) color.RGBA {
	b := tex.Rect
	x := b.Min.X + clampInt(int(u*float64(b.Dx())), 0, b.Dx()-1)
	y := b.Min.Y + clampInt(int(v*float64(b.Dy())), 0, b.Dy()-1)
	o := tex.PixOffset(x, y)
	return color.RGBA{R: tex.Pix[o], G: tex.Pix[o+1], B: tex.Pix[o+2], A: tex.Pix[o+3]}
}

func shadeChannel(c uint8, s float64) uint8 {
	v := float64(c) * s
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
