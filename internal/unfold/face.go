// Package unfold computes the 2D unfolding (net) of a rectangular box: which
// grid cell each face occupies and the pixel rectangle it gets in the atlas.
package unfold

import (
	"fmt"
	"math"
	"strings"
)

// Face identifies one side of the box by its outward normal.
type Face string

const (
	FaceNone Face = ""
	FacePX   Face = "+X"
	FaceNX   Face = "-X"
	FacePY   Face = "+Y"
	FaceNY   Face = "-Y"
	FacePZ   Face = "+Z"
	FaceNZ   Face = "-Z"
)

var allFaces = [6]Face{FacePX, FaceNX, FacePY, FaceNY, FacePZ, FaceNZ}

// Faces returns the six faces in canonical order.
func Faces() []Face {
	out := make([]Face, len(allFaces))
	copy(out, allFaces[:])
	return out
}

// Axis is a box axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	return f.Index() >= 0
}

// Index returns the position of f in canonical order, or -1.
func (f Face) Index() int {
	for i, g := range allFaces {
		if g == f {
			return i
		}
	}
	return -1
}

// Axis returns the normal axis of the face.
func (f Face) Axis() Axis {
	switch f {
	case FacePX, FaceNX:
		return AxisX
	case FacePY, FaceNY:
		return AxisY
	default:
		return AxisZ
	}
}

// Sign returns +1 for the positive face of an axis and -1 for the negative.
func (f Face) Sign() float64 {
	if strings.HasPrefix(string(f), "-") {
		return -1
	}
	return 1
}

// Footprint returns the physical width and height of the face: the two box
// dimensions orthogonal to its normal. ±X faces are Y wide and Z tall, ±Y
// faces are X wide and Z tall, ±Z faces are X wide and Y tall.
func (f Face) Footprint(d Dims) (w, h float64) {
	switch f.Axis() {
	case AxisX:
		return d.Y, d.Z
	case AxisY:
		return d.X, d.Z
	default:
		return d.X, d.Y
	}
}

// ParseFace parses a face label. Empty-cell markers ("", "-", ".", "_")
// return FaceNone.
func ParseFace(s string) (Face, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "", "-", ".", "_":
		return FaceNone, nil
	}
	f := Face(s)
	if !f.Valid() {
		return FaceNone, fmt.Errorf("%w: %q", ErrUnknownFace, s)
	}
	return f, nil
}

// Dims holds the physical box dimensions.
type Dims struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Validate checks that every dimension is finite and not negative.
func (d Dims) Validate() error {
	for _, v := range [3]float64{d.X, d.Y, d.Z} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: box dimensions must be finite and not negative (%gx%gx%g)", ErrInvalidDimensions, d.X, d.Y, d.Z)
		}
	}
	return nil
}
