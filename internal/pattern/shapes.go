package pattern

import (
	"math"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// Shape returns the pattern's own geometry inside rect. Physical parameters
// are converted to pixels with resolution (pixels per physical unit). The
// result is always clipped to rect.
func Shape(kind Kind, rect geometry.Rect, p Params, resolution float64) Region {
	face := Box(rect)
	switch kind {
	case KindBandH:
		return Intersect{face, bandH(rect, p.BandWidth*resolution)}
	case KindBandV:
		return Intersect{face, bandV(rect, p.BandWidth*resolution)}
	case KindWrapCross:
		bw := p.BandWidth * resolution
		return Intersect{face, Union{bandH(rect, bw), bandV(rect, bw)}}
	case KindBorderOnly:
		return Difference{From: face, Hole: Box(rect.Inset(p.BorderWidth * resolution))}
	case KindCornerPads:
		return Intersect{face, cornerPads(rect, p.PadSize*resolution, p.PadGap*resolution, p.CornerRadius*resolution)}
	case KindDiagonalWrap:
		return Intersect{face, diagonals(rect, p.LineWidth*resolution/2)}
	default:
		return Empty{}
	}
}

// Coverage returns the set of pixels a FacePattern affects inside rect.
//
// inside covers the shape; outside covers rect minus the shape. The one
// exception is diagonal-wrap with outside/erase, which subtracts
// approximateDiagonalHole instead of the exact stroked diagonals, so it is
// not the exact complement of inside/erase.
func Coverage(fp FacePattern, rect geometry.Rect, resolution float64) Region {
	if fp.Fill == FillInside {
		return Shape(fp.Kind, rect, fp.Params, resolution)
	}
	if fp.Kind == KindDiagonalWrap && fp.Op == OpErase {
		return Difference{From: Box(rect), Hole: approximateDiagonalHole(rect, fp.Params.LineWidth*resolution/2)}
	}
	return Difference{From: Box(rect), Hole: Shape(fp.Kind, rect, fp.Params, resolution)}
}

func bandH(rect geometry.Rect, width float64) Region {
	width = math.Min(math.Max(width, 0), rect.Height)
	return Box{X: rect.X, Y: rect.Y + (rect.Height-width)/2, Width: rect.Width, Height: width}
}

func bandV(rect geometry.Rect, width float64) Region {
	width = math.Min(math.Max(width, 0), rect.Width)
	return Box{X: rect.X + (rect.Width-width)/2, Y: rect.Y, Width: width, Height: rect.Height}
}

// cornerPads places four size x size squares, each gap away from both edges
// of its corner.
func cornerPads(rect geometry.Rect, size, gap, radius float64) Region {
	if size <= 0 {
		return Empty{}
	}
	left := rect.X + gap
	top := rect.Y + gap
	right := rect.X + rect.Width - gap - size
	bottom := rect.Y + rect.Height - gap - size
	pads := make(Union, 0, 4)
	for _, p := range [4]geometry.Point2D{{X: left, Y: top}, {X: right, Y: top}, {X: left, Y: bottom}, {X: right, Y: bottom}} {
		pads = append(pads, RoundedBox{Rect: geometry.NewRect(p.X, p.Y, size, size), Radius: radius})
	}
	return pads
}

// diagonals strokes both corner-to-corner diagonals of rect.
func diagonals(rect geometry.Rect, halfWidth float64) Region {
	if halfWidth <= 0 || rect.Width <= 0 || rect.Height <= 0 {
		return Empty{}
	}
	x0, y0 := rect.X, rect.Y
	x1, y1 := rect.X+rect.Width, rect.Y+rect.Height
	return Union{
		Band{A: geometry.NewPoint2D(x0, y0), B: geometry.NewPoint2D(x1, y1), HalfWidth: halfWidth},
		Band{A: geometry.NewPoint2D(x1, y0), B: geometry.NewPoint2D(x0, y1), HalfWidth: halfWidth},
	}
}

// approximateDiagonalHole builds one parallelogram per diagonal by shifting
// the diagonal halfWidth left and right. Its horizontal extent is
// 2*halfWidth, so on any slanted diagonal it is narrower than the true
// stroke, whose horizontal extent is 2*halfWidth/sin(angle).
func approximateDiagonalHole(rect geometry.Rect, halfWidth float64) Region {
	if halfWidth <= 0 || rect.Width <= 0 || rect.Height <= 0 {
		return Empty{}
	}
	x0, y0 := rect.X, rect.Y
	x1, y1 := rect.X+rect.Width, rect.Y+rect.Height
	return Union{
		Polygon{{X: x0 - halfWidth, Y: y0}, {X: x0 + halfWidth, Y: y0}, {X: x1 + halfWidth, Y: y1}, {X: x1 - halfWidth, Y: y1}},
		Polygon{{X: x1 - halfWidth, Y: y0}, {X: x1 + halfWidth, Y: y0}, {X: x0 + halfWidth, Y: y1}, {X: x0 - halfWidth, Y: y1}},
	}
}
