package geometry

// Polygon is a closed polygon given by its vertices in order.
type Polygon []Point2D

// Contains tests p against the polygon with the even-odd rule.
func (poly Polygon) Contains(p Point2D) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
