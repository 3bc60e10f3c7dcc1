// Package pattern synthesizes procedural face patterns (bands, crosses,
// borders, corner pads, diagonal wraps) and rasterizes them into the
// atlas-wide pattern layer with inside/outside, paint/erase semantics.
package pattern

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// Kind selects the pattern geometry.
type Kind string

const (
	KindBandH        Kind = "band-h"
	KindBandV        Kind = "band-v"
	KindWrapCross    Kind = "wrap-cross"
	KindBorderOnly   Kind = "border-only"
	KindCornerPads   Kind = "corner-pads"
	KindDiagonalWrap Kind = "diagonal-wrap"
)

// Kinds returns every pattern kind.
func Kinds() []Kind {
	return []Kind{KindBandH, KindBandV, KindWrapCross, KindBorderOnly, KindCornerPads, KindDiagonalWrap}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// Approximate reports whether the kind's outside/erase coverage is an
// approximation rather than the exact complement of its shape.
func (k Kind) Approximate() bool {
	return k == KindDiagonalWrap
}

// Op says whether covered pixels are painted or erased.
type Op string

const (
	OpPaint Op = "paint"
	OpErase Op = "erase"
)

// Fill says whether the shape itself or the face minus the shape is covered.
type Fill string

const (
	FillInside  Fill = "inside"
	FillOutside Fill = "outside"
)

// Params holds the pattern dimensions, all in physical units.
type Params struct {
	LineWidth    float64 `json:"line_width" yaml:"line_width"`
	BandWidth    float64 `json:"band_width" yaml:"band_width"`
	BorderWidth  float64 `json:"border_width" yaml:"border_width"`
	PadSize      float64 `json:"pad_size" yaml:"pad_size"`
	PadGap       float64 `json:"pad_gap" yaml:"pad_gap"`
	CornerRadius float64 `json:"corner_radius" yaml:"corner_radius"`
}

// DefaultParams returns the parameters new patterns start with.
func DefaultParams() Params {
	return Params{
		LineWidth:    4,
		BandWidth:    8,
		BorderWidth:  3,
		PadSize:      8,
		PadGap:       2,
		CornerRadius: 0,
	}
}

// FacePattern is one pattern instance applied to a face.
type FacePattern struct {
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Params Params `json:"params" yaml:"params"`
	Op     Op     `json:"op" yaml:"op"`
	Fill   Fill   `json:"fill" yaml:"fill"`
}

// ErrInvalidPattern reports a malformed FacePattern.
var ErrInvalidPattern = errors.New("invalid pattern")

// Validate checks the kind, operation, fill mode and that no parameter is
// negative.
func (fp FacePattern) Validate() error {
	if !fp.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPattern, fp.Kind)
	}
	if fp.Op != OpPaint && fp.Op != OpErase {
		return fmt.Errorf("%w: unknown op %q", ErrInvalidPattern, fp.Op)
	}
	if fp.Fill != FillInside && fp.Fill != FillOutside {
		return fmt.Errorf("%w: unknown fill %q", ErrInvalidPattern, fp.Fill)
	}
	p := fp.Params
	for name, v := range map[string]float64{
		"line width": p.LineWidth, "band width": p.BandWidth, "border width": p.BorderWidth,
		"pad size": p.PadSize, "pad gap": p.PadGap, "corner radius": p.CornerRadius,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite and not negative, got %g", ErrInvalidPattern, name, v)
		}
	}
	return nil
}

// Map assigns each face its ordered pattern stack. Later entries composite
// on top of earlier ones.
type Map map[unfold.Face][]FacePattern

// Clone returns a deep copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for f, list := range m {
		out[f] = slices.Clone(list)
	}
	return out
}

// Add appends fp to the face's stack.
func (m Map) Add(face unfold.Face, fp FacePattern) {
	m[face] = append(m[face], fp)
}

// Remove deletes the pattern with the given ID from the face's stack and
// reports whether it was found.
func (m Map) Remove(face unfold.Face, id string) bool {
	list := m[face]
	i := slices.IndexFunc(list, func(fp FacePattern) bool { return fp.ID == id })
	if i < 0 {
		return false
	}
	m[face] = slices.Delete(list, i, i+1)
	if len(m[face]) == 0 {
		delete(m, face)
	}
	return true
}

// Move shifts the pattern with the given ID by delta positions within its
// stack, clamped to the ends, and reports whether it was found.
func (m Map) Move(face unfold.Face, id string, delta int) bool {
	list := m[face]
	i := slices.IndexFunc(list, func(fp FacePattern) bool { return fp.ID == id })
	if i < 0 {
		return false
	}
	j := min(max(i+delta, 0), len(list)-1)
	fp := list[i]
	list = slices.Delete(list, i, i+1)
	m[face] = slices.Insert(list, j, fp)
	return true
}

// Replace swaps the pattern with fp.ID for fp and reports whether it was
// found.
func (m Map) Replace(face unfold.Face, fp FacePattern) bool {
	list := m[face]
	i := slices.IndexFunc(list, func(p FacePattern) bool { return p.ID == fp.ID })
	if i < 0 {
		return false
	}
	list[i] = fp
	return true
}

// Validate checks every pattern in the map.
func (m Map) Validate() error {
	for f, list := range m {
		if !f.Valid() {
			return fmt.Errorf("%w: unknown face %q", ErrInvalidPattern, f)
		}
		for _, fp := range list {
			if err := fp.Validate(); err != nil {
				return fmt.Errorf("face %s pattern %q: %w", f, fp.ID, err)
			}
		}
	}
	return nil
}
