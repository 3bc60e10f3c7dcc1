package pattern

import (
	"math"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// Region is a point set in atlas pixel space. Rasterisation samples it at
// pixel centers, so two regions that partition an area also partition its
// pixels exactly.
type Region interface {
	Contains(x, y float64) bool
}

// Empty contains nothing.
type Empty struct{}

func (Empty) Contains(x, y float64) bool { return false }

// Box is an axis-aligned half-open rectangle [X, X+W) x [Y, Y+H).
type Box geometry.Rect

func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// RoundedBox is a Box whose corners are rounded with Radius. The radius is
// clamped to half the shorter side.
type RoundedBox struct {
	Rect   geometry.Rect
	Radius float64
}

func (b RoundedBox) Contains(x, y float64) bool {
	if !Box(b.Rect).Contains(x, y) {
		return false
	}
	r := math.Min(b.Radius, math.Min(b.Rect.Width, b.Rect.Height)/2)
	if r <= 0 {
		return true
	}
	// Distance into the corner square, if any.
	cx := math.Max(b.Rect.X+r-x, x-(b.Rect.X+b.Rect.Width-r))
	cy := math.Max(b.Rect.Y+r-y, y-(b.Rect.Y+b.Rect.Height-r))
	if cx <= 0 || cy <= 0 {
		return true
	}
	return cx*cx+cy*cy <= r*r
}

// Band is the area swept by a segment of the given half width, with butt
// ends: the points whose projection falls on the segment and whose distance
// to it is at most HalfWidth.
type Band struct {
	A, B      geometry.Point2D
	HalfWidth float64
}

func (s Band) Contains(x, y float64) bool {
	dx, dy := s.B.X-s.A.X, s.B.Y-s.A.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 || s.HalfWidth <= 0 {
		return false
	}
	px, py := x-s.A.X, y-s.A.Y
	t := (px*dx + py*dy) / l2
	if t < 0 || t > 1 {
		return false
	}
	cross := px*dy - py*dx
	return cross*cross <= s.HalfWidth*s.HalfWidth*l2
}

// Polygon is a closed polygon under the even-odd rule.
type Polygon geometry.Polygon

func (p Polygon) Contains(x, y float64) bool {
	return geometry.Polygon(p).Contains(geometry.NewPoint2D(x, y))
}

// Union contains the points of any member.
type Union []Region

func (u Union) Contains(x, y float64) bool {
	for _, r := range u {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

// Intersect contains the points common to all members. An empty Intersect
// contains nothing.
type Intersect []Region

func (in Intersect) Contains(x, y float64) bool {
	if len(in) == 0 {
		return false
	}
	for _, r := range in {
		if !r.Contains(x, y) {
			return false
		}
	}
	return true
}

// Difference contains the points of From that are not in Hole.
type Difference struct {
	From Region
	Hole Region
}

func (d Difference) Contains(x, y float64) bool {
	return d.From.Contains(x, y) && !d.Hole.Contains(x, y)
}
