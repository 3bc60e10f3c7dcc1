package mask

import (
	"math"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// FaceLocator reports which face, if any, contains an atlas point.
// *unfold.Layout implements it.
type FaceLocator interface {
	FaceAt(x, y float64) (unfold.Face, bool)
}

// Stroke turns a pointer gesture into a sequence of brush discs. Fast drags
// are filled in by stamping intermediate discs no further apart than half
// the brush diameter.
//
// Points that fall outside every face paint nothing and never become the
// previous point. Leaving the faces also breaks the segment chain, so
// re-entering elsewhere starts afresh instead of drawing a connecting line
// across the gap.
type Stroke struct {
	store    *Store
	faces    FaceLocator
	radius   float64
	paint    bool
	onEdited func(version uint64)

	active  bool
	hasPrev bool
	prev    geometry.Point2D
	stamps  int
}

// NewStroke prepares a stroke. radius is in atlas pixels. onEdited, if not
// nil, is called after every pointer event that changed the mask.
func NewStroke(store *Store, faces FaceLocator, radius float64, paint bool, onEdited func(version uint64)) *Stroke {
	return &Stroke{
		store:    store,
		faces:    faces,
		radius:   radius,
		paint:    paint,
		onEdited: onEdited,
	}
}

// Spacing is the maximum distance between consecutive disc centers.
func (s *Stroke) Spacing() float64 {
	return math.Max(s.radius, 0.5)
}

// Active reports whether the stroke has begun and not yet ended.
func (s *Stroke) Active() bool {
	return s.active
}

// Stamps returns how many discs the stroke has painted.
func (s *Stroke) Stamps() int {
	return s.stamps
}

// Begin starts the stroke and paints the first disc if p lies on a face.
func (s *Stroke) Begin(p geometry.Point2D) {
	s.active = true
	s.hasPrev = false
	s.stamps = 0
	if !s.inside(p) {
		return
	}
	v := s.stamp(p)
	s.prev = p
	s.hasPrev = true
	s.notify(v)
}

// Move extends the stroke to p, interpolating from the previous point.
func (s *Stroke) Move(p geometry.Point2D) {
	if !s.active {
		return
	}
	if !s.inside(p) {
		s.hasPrev = false
		return
	}
	var v uint64
	if s.hasPrev {
		d := s.prev.Distance(p)
		if spacing := s.Spacing(); d > spacing {
			steps := int(math.Ceil(d / spacing))
			for i := 1; i < steps; i++ {
				q := s.prev.Lerp(p, float64(i)/float64(steps))
				if s.inside(q) {
					v = s.stamp(q)
				}
			}
		}
	}
	v = s.stamp(p)
	s.prev = p
	s.hasPrev = true
	s.notify(v)
}

// End finishes the stroke. Further moves are ignored until Begin.
func (s *Stroke) End() {
	if s.active {
		applog.Logger().Debug("stroke ended", "stamps", s.stamps, "paint", s.paint)
	}
	s.active = false
	s.hasPrev = false
}

func (s *Stroke) inside(p geometry.Point2D) bool {
	if s.faces == nil {
		return false
	}
	_, ok := s.faces.FaceAt(p.X, p.Y)
	return ok
}

func (s *Stroke) stamp(p geometry.Point2D) uint64 {
	s.stamps++
	return s.store.PaintCircle(p.X, p.Y, s.radius, s.paint)
}

func (s *Stroke) notify(version uint64) {
	if s.onEdited != nil {
		s.onEdited(version)
	}
}
