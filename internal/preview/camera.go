package preview

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultFOV is the vertical field of view in radians.
	DefaultFOV   = 40 * math.Pi / 180
	framePadding = 1.15
	nearPlane    = 1e-3
)

// Camera sits on the +Z axis looking at the origin with +Y up.
type Camera struct {
	FOV      float64
	Distance float64
}

// FitCamera places the camera so a sphere of radius fits the field of view
// with some padding.
func FitCamera(radius, fov float64) Camera {
	if !(fov > 0) || fov >= math.Pi {
		fov = DefaultFOV
	}
	if !(radius > 0) {
		radius = 1
	}
	return Camera{FOV: fov, Distance: radius * framePadding / math.Sin(fov/2)}
}

// Position returns the eye position.
func (c Camera) Position() r3.Vec {
	return r3.Vec{Z: c.Distance}
}

// Project maps a view-space point to pixel coordinates on a w x h frame and
// returns its depth along the view axis. ok is false for points at or
// behind the near plane.
func (c Camera) Project(p r3.Vec, w, h int) (x, y, depth float64, ok bool) {
	depth = c.Distance - p.Z
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	f := float64(h) / 2 / math.Tan(c.FOV/2)
	x = float64(w)/2 + p.X*f/depth
	y = float64(h)/2 - p.Y*f/depth
	return x, y, depth, true
}

// Orientation is the model rotation: the box is first stood up so +Z points
// up the screen, then turned by Yaw about the vertical axis and tilted by
// Pitch about the horizontal one.
type Orientation struct {
	Yaw   float64
	Pitch float64
}

const maxPitch = math.Pi/2 - 0.01

// DefaultOrientation shows three faces of the box.
func DefaultOrientation() Orientation {
	return Orientation{Yaw: -35 * math.Pi / 180, Pitch: 25 * math.Pi / 180}
}

// Turn adds to yaw and pitch, wrapping yaw and clamping pitch.
func (o Orientation) Turn(dYaw, dPitch float64) Orientation {
	o.Yaw = math.Remainder(o.Yaw+dYaw, 2*math.Pi)
	o.Pitch = math.Max(-maxPitch, math.Min(maxPitch, o.Pitch+dPitch))
	return o
}

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
)

// Rotator returns a function applying the orientation to model points.
func (o Orientation) Rotator() func(r3.Vec) r3.Vec {
	standUp := r3.NewRotation(-math.Pi/2, axisX)
	yaw := r3.NewRotation(o.Yaw, axisY)
	pitch := r3.NewRotation(o.Pitch, axisX)
	return func(p r3.Vec) r3.Vec {
		return pitch.Rotate(yaw.Rotate(standUp.Rotate(p)))
	}
}
