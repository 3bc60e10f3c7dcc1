// Package geometry holds the small 2D value types shared by the layout,
// pattern and surface packages: atlas points, float and pixel rectangles,
// and the affine map between atlas and view space.
package geometry

import (
	"image"
	"math"
)

// Point2D is a point in atlas or view pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Lerp returns the point at parameter t on the segment from p to q.
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return Point2D{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Rect is an axis-aligned rectangle with fractional edges.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Inset returns the rectangle shrunk by d on every side. A negative size
// collapses to zero around the center.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
	if out.Width < 0 {
		out.X = r.X + r.Width/2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Y = r.Y + r.Height/2
		out.Height = 0
	}
	return out
}

// RectInt is a whole-pixel rectangle, used for face footprints in the atlas.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r RectInt) ToFloat() Rect {
	return Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Contains reports whether the point lies within the half-open pixel area
// [X, X+Width) x [Y, Y+Height).
func (r RectInt) Contains(x, y float64) bool {
	return x >= float64(r.X) && x < float64(r.X+r.Width) &&
		y >= float64(r.Y) && y < float64(r.Y+r.Height)
}

// Empty reports whether the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the exclusive right edge.
func (r RectInt) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r RectInt) Bottom() int { return r.Y + r.Height }

func (r RectInt) ImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// AffineTransform is the 2x3 matrix
//
//	[A B TX]
//	[C D TY]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns t * o: o is applied first.
func (t AffineTransform) Compose(o AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*o.A + t.B*o.C,
		B:  t.A*o.B + t.B*o.D,
		TX: t.A*o.TX + t.B*o.TY + t.TX,
		C:  t.C*o.A + t.D*o.C,
		D:  t.C*o.B + t.D*o.D,
		TY: t.C*o.TX + t.D*o.TY + t.TY,
	}
}

// Inverse returns the inverse map. It reports false for a singular matrix,
// which a zero view scale produces.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-10 {
		return AffineTransform{}, false
	}
	inv := 1 / det
	return AffineTransform{
		A:  t.D * inv,
		B:  -t.B * inv,
		TX: (t.B*t.TY - t.D*t.TX) * inv,
		C:  -t.C * inv,
		D:  t.A * inv,
		TY: (t.C*t.TX - t.A*t.TY) * inv,
	}, true
}
