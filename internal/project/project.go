// Package project provides project file handling and persistence.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// CurrentVersion is the format version written by Save.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned for files written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported project version")

// File represents a box net project file (.boxnet). It stores the design
// inputs and the pattern stacks. The painted mask is not stored.
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	Dims       unfold.Dims `json:"dims"`
	Resolution float64     `json:"resolution"`
	Margin     int         `json:"margin"`
	Template   Template    `json:"template"`
	BrushSize  float64     `json:"brush_size"`

	Patterns pattern.Map `json:"patterns,omitempty"`
}

// Template is the serialized form of a grid template. Empty cells are ".".
type Template struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// FromGrid converts a grid template for storage.
func FromGrid(t unfold.GridTemplate) Template {
	rows := make([][]string, len(t.Cells))
	for r, row := range t.Cells {
		rows[r] = make([]string, len(row))
		for c, f := range row {
			if f == unfold.FaceNone {
				rows[r][c] = "."
			} else {
				rows[r][c] = string(f)
			}
		}
	}
	return Template{Name: t.Name, Rows: rows}
}

// Grid parses and validates the stored template.
func (t Template) Grid() (unfold.GridTemplate, error) {
	return unfold.ParseRows(t.Name, t.Rows)
}

// New creates a new project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Patterns: pattern.Map{},
	}
}

// Load loads a project from a .boxnet file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, proj.Version)
	}
	if proj.Patterns == nil {
		proj.Patterns = pattern.Map{}
	}
	if err := proj.Patterns.Validate(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
