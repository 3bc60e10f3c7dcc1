package unfold

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Configuration errors reported before any layout is computed.
var (
	ErrEmptyTemplate     = errors.New("template has no cells")
	ErrJaggedTemplate    = errors.New("template rows have different lengths")
	ErrDuplicateFace     = errors.New("face placed more than once")
	ErrUnknownFace       = errors.New("unknown face label")
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// GridTemplate describes how the faces are unfolded: a rectangular grid of
// cells, each holding a face or FaceNone.
type GridTemplate struct {
	Name  string   `json:"name" yaml:"name"`
	Cells [][]Face `json:"cells" yaml:"-"`
}

// Rows returns the number of grid rows.
func (t GridTemplate) Rows() int {
	return len(t.Cells)
}

// Cols returns the number of grid columns (the length of the first row).
func (t GridTemplate) Cols() int {
	if len(t.Cells) == 0 {
		return 0
	}
	return len(t.Cells[0])
}

// Validate rejects empty, jagged, duplicate-face and unknown-face templates.
func (t GridTemplate) Validate() error {
	if len(t.Cells) == 0 || len(t.Cells[0]) == 0 {
		return ErrEmptyTemplate
	}
	cols := len(t.Cells[0])
	seen := make(map[Face][2]int)
	occupied := 0
	for r, row := range t.Cells {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrJaggedTemplate, r, len(row), cols)
		}
		for c, f := range row {
			if f == FaceNone {
				continue
			}
			if !f.Valid() {
				return fmt.Errorf("%w: %q at column %d, row %d", ErrUnknownFace, string(f), c, r)
			}
			if prev, dup := seen[f]; dup {
				return fmt.Errorf("%w: %s at (%d,%d) and (%d,%d)", ErrDuplicateFace, f, prev[0], prev[1], c, r)
			}
			seen[f] = [2]int{c, r}
			occupied++
		}
	}
	if occupied == 0 {
		return ErrEmptyTemplate
	}
	return nil
}

// FacesPresent returns the faces the template places, in row-major order.
func (t GridTemplate) FacesPresent() []Face {
	var out []Face
	for _, row := range t.Cells {
		for _, f := range row {
			if f != FaceNone {
				out = append(out, f)
			}
		}
	}
	return out
}

// Key returns a compact textual fingerprint of the cell grid, used to key
// cached layouts.
func (t GridTemplate) Key() string {
	var b strings.Builder
	for r, row := range t.Cells {
		if r > 0 {
			b.WriteByte('/')
		}
		for c, f := range row {
			if c > 0 {
				b.WriteByte(',')
			}
			if f == FaceNone {
				b.WriteByte('.')
			} else {
				b.WriteString(string(f))
			}
		}
	}
	return b.String()
}

// Clone returns a deep copy of the template.
func (t GridTemplate) Clone() GridTemplate {
	out := GridTemplate{Name: t.Name, Cells: make([][]Face, len(t.Cells))}
	for i, row := range t.Cells {
		out.Cells[i] = append([]Face(nil), row...)
	}
	return out
}

// ParseRows builds a template from rows of face labels.
func ParseRows(name string, rows [][]string) (GridTemplate, error) {
	t := GridTemplate{Name: name, Cells: make([][]Face, len(rows))}
	for r, row := range rows {
		t.Cells[r] = make([]Face, len(row))
		for c, s := range row {
			f, err := ParseFace(s)
			if err != nil {
				return GridTemplate{}, fmt.Errorf("template %q cell (%d,%d): %w", name, c, r, err)
			}
			t.Cells[r][c] = f
		}
	}
	if err := t.Validate(); err != nil {
		return GridTemplate{}, fmt.Errorf("template %q: %w", name, err)
	}
	return t, nil
}

// Preset template names.
const (
	PresetCross   = "cross"
	PresetCompact = "compact-3x2"
	PresetStrip   = "strip-1x6"
	PresetTShape  = "t-shape"
)

// CrossTemplate is the classic cross unfolding: a belt of four side faces
// with the lid and base above and below the second one.
func CrossTemplate() GridTemplate {
	return GridTemplate{Name: PresetCross, Cells: [][]Face{
		{FaceNone, FacePZ, FaceNone, FaceNone},
		{FaceNX, FaceNY, FacePX, FacePY},
		{FaceNone, FaceNZ, FaceNone, FaceNone},
	}}
}

// CompactTemplate packs the faces into a 3x2 block, positive faces on top.
func CompactTemplate() GridTemplate {
	return GridTemplate{Name: PresetCompact, Cells: [][]Face{
		{FacePX, FacePY, FacePZ},
		{FaceNX, FaceNY, FaceNZ},
	}}
}

// StripTemplate lays all six faces in a single row.
func StripTemplate() GridTemplate {
	return GridTemplate{Name: PresetStrip, Cells: [][]Face{
		{FacePX, FacePY, FaceNX, FaceNY, FacePZ, FaceNZ},
	}}
}

// TShapeTemplate hangs a four-face column under a three-face bar.
func TShapeTemplate() GridTemplate {
	return GridTemplate{Name: PresetTShape, Cells: [][]Face{
		{FaceNX, FaceNY, FacePX},
		{FaceNone, FaceNZ, FaceNone},
		{FaceNone, FacePY, FaceNone},
		{FaceNone, FacePZ, FaceNone},
	}}
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]GridTemplate)
)

// Register validates t and adds it to the template registry, replacing any
// template of the same name.
func Register(t GridTemplate) error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("template %q: %w", t.Name, err)
	}
	registryMu.Lock()
	registry[t.Name] = t.Clone()
	registryMu.Unlock()
	return nil
}

// Lookup returns a registered template by name.
func Lookup(name string) (GridTemplate, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	if !ok {
		return GridTemplate{}, false
	}
	return t.Clone(), true
}

// ListTemplates returns all registered template names, sorted.
func ListTemplates() []string {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	registryMu.RUnlock()
	sort.Strings(names)
	return names
}

func init() {
	for _, t := range []GridTemplate{CrossTemplate(), CompactTemplate(), StripTemplate(), TShapeTemplate()} {
		if err := Register(t); err != nil {
			panic(err)
		}
	}
}
