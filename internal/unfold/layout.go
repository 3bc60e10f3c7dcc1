package unfold

import (
	"fmt"
	"math"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/geometry"
)

// CellKey addresses a template cell by column and row.
type CellKey struct {
	Col int
	Row int
}

// Layout is the pixel geometry of one unfolding. It is derived from
// (dims, resolution, margin, template) and never modified afterwards.
type Layout struct {
	Dims       Dims
	Resolution float64 // pixels per physical unit
	Margin     int     // pixels between and around cells
	Template   GridTemplate

	Width  int // atlas width in pixels
	Height int // atlas height in pixels
	Cols   int
	Rows   int

	ColWidths  []int
	RowHeights []int
	ColX       []int // left edge of each column
	RowY       []int // top edge of each row

	Cells     map[CellKey]geometry.RectInt // full column x row box of each occupied cell
	FaceRects map[Face]geometry.RectInt    // face footprint, anchored at its cell's top-left
	FaceCells map[Face]CellKey
}

// BuildLayout computes the atlas geometry for a box of the given physical
// dimensions unfolded with tmpl. Templates are validated first; a malformed
// template or negative input is rejected before any geometry is computed.
//
// Each face is sized from the two box dimensions orthogonal to its normal,
// scaled by resolution and rounded to whole pixels. A column is as wide as
// its widest face and a row as tall as its tallest, so irregular templates
// tile without overlap.
func BuildLayout(dims Dims, resolution float64, margin int, tmpl GridTemplate) (*Layout, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", tmpl.Name, err)
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if resolution <= 0 || math.IsNaN(resolution) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: resolution must be positive, got %g", ErrInvalidDimensions, resolution)
	}
	if margin < 0 {
		return nil, fmt.Errorf("%w: margin must not be negative, got %d", ErrInvalidDimensions, margin)
	}

	rows, cols := tmpl.Rows(), tmpl.Cols()
	l := &Layout{
		Dims:       dims,
		Resolution: resolution,
		Margin:     margin,
		Template:   tmpl.Clone(),
		Cols:       cols,
		Rows:       rows,
		ColWidths:  make([]int, cols),
		RowHeights: make([]int, rows),
		ColX:       make([]int, cols),
		RowY:       make([]int, rows),
		Cells:      make(map[CellKey]geometry.RectInt),
		FaceRects:  make(map[Face]geometry.RectInt),
		FaceCells:  make(map[Face]CellKey),
	}

	sizes := make(map[Face][2]int)
	for r, row := range tmpl.Cells {
		for c, f := range row {
			if f == FaceNone {
				continue
			}
			fw, fh := f.Footprint(dims)
			w := toPixels(fw, resolution)
			h := toPixels(fh, resolution)
			sizes[f] = [2]int{w, h}
			l.ColWidths[c] = max(l.ColWidths[c], w)
			l.RowHeights[r] = max(l.RowHeights[r], h)
		}
	}

	x := margin
	for c := range cols {
		l.ColX[c] = x
		x += l.ColWidths[c] + margin
	}
	y := margin
	for r := range rows {
		l.RowY[r] = y
		y += l.RowHeights[r] + margin
	}
	l.Width = x
	l.Height = y

	for r, row := range tmpl.Cells {
		for c, f := range row {
			if f == FaceNone {
				continue
			}
			key := CellKey{Col: c, Row: r}
			l.Cells[key] = geometry.RectInt{X: l.ColX[c], Y: l.RowY[r], Width: l.ColWidths[c], Height: l.RowHeights[r]}
			sz := sizes[f]
			l.FaceRects[f] = geometry.RectInt{X: l.ColX[c], Y: l.RowY[r], Width: sz[0], Height: sz[1]}
			l.FaceCells[f] = key
		}
	}

	return l, nil
}

func toPixels(v, resolution float64) int {
	return int(math.Round(v * resolution))
}

// FaceAt returns the face whose rectangle contains the atlas point (x, y).
func (l *Layout) FaceAt(x, y float64) (Face, bool) {
	for _, f := range allFaces {
		r, ok := l.FaceRects[f]
		if ok && r.Contains(x, y) {
			return f, true
		}
	}
	return FaceNone, false
}

// OccupiedCells returns the keys of all occupied cells in row-major order.
func (l *Layout) OccupiedCells() []CellKey {
	keys := make([]CellKey, 0, len(l.Cells))
	for r := range l.Rows {
		for c := range l.Cols {
			if l.Template.Cells[r][c] != FaceNone {
				keys = append(keys, CellKey{Col: c, Row: r})
			}
		}
	}
	return keys
}

// PresentFaces returns the faces placed by the layout in canonical order.
func (l *Layout) PresentFaces() []Face {
	out := make([]Face, 0, len(l.FaceRects))
	for _, f := range allFaces {
		if _, ok := l.FaceRects[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// SameFaceRects reports whether two layouts have identical face rectangles.
func (l *Layout) SameFaceRects(other *Layout) bool {
	if l == nil || other == nil {
		return l == other
	}
	if len(l.FaceRects) != len(other.FaceRects) {
		return false
	}
	for f, r := range l.FaceRects {
		if o, ok := other.FaceRects[f]; !ok || o != r {
			return false
		}
	}
	return true
}

// SameInputs reports whether two layouts were built from equal dims,
// resolution, margin and template (name and cells).
func (l *Layout) SameInputs(other *Layout) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Dims == other.Dims &&
		l.Resolution == other.Resolution &&
		l.Margin == other.Margin &&
		l.Template.Name == other.Template.Name &&
		l.Template.Key() == other.Template.Key()
}

// SameGeometry reports whether two layouts have the same atlas size and
// face rectangles, so atlas pixels mean the same place in both.
func (l *Layout) SameGeometry(other *Layout) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Width == other.Width && l.Height == other.Height && l.SameFaceRects(other)
}

// Hinge is a fold line shared by two adjacent occupied cells.
type Hinge struct {
	A, B     Face // A is left of / above B
	Vertical bool // true for cells side by side in a row
	X1, Y1   float64
	X2, Y2   float64
}

// Hinges returns the fold lines between horizontally or vertically adjacent
// occupied cells. Each line sits in the middle of the margin gap and spans
// the overlap of the two face rectangles.
func (l *Layout) Hinges() []Hinge {
	var out []Hinge
	half := float64(l.Margin) / 2
	cells := l.Template.Cells
	for r := range l.Rows {
		for c := range l.Cols {
			a := cells[r][c]
			if a == FaceNone {
				continue
			}
			ra := l.FaceRects[a]
			if c+1 < l.Cols {
				if b := cells[r][c+1]; b != FaceNone {
					rb := l.FaceRects[b]
					top := max(ra.Y, rb.Y)
					bottom := min(ra.Bottom(), rb.Bottom())
					if bottom > top {
						x := float64(l.ColX[c+1]) - half
						out = append(out, Hinge{A: a, B: b, Vertical: true,
							X1: x, Y1: float64(top), X2: x, Y2: float64(bottom)})
					}
				}
			}
			if r+1 < l.Rows {
				if b := cells[r+1][c]; b != FaceNone {
					rb := l.FaceRects[b]
					left := max(ra.X, rb.X)
					right := min(ra.Right(), rb.Right())
					if right > left {
						y := float64(l.RowY[r+1]) - half
						out = append(out, Hinge{A: a, B: b,
							X1: float64(left), Y1: y, X2: float64(right), Y2: y})
					}
				}
			}
		}
	}
	return out
}
