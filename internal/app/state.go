// Package app provides application state, configuration, and events.
package app

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/mask"
	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/project"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

var (
	// ErrInvalidBrush is returned for a non-positive brush size.
	ErrInvalidBrush = errors.New("brush size must be positive")
	// ErrUnknownTemplate is returned when a template name is not registered.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrFaceNotInLayout is returned when editing patterns of a face the
	// current template does not place.
	ErrFaceNotInLayout = errors.New("face not in layout")
)

// Settings are the design inputs. Everything except BrushSize feeds the
// layout.
type Settings struct {
	Dims       unfold.Dims
	Resolution float64
	Margin     int
	Template   unfold.GridTemplate
	BrushSize  float64
}

// DefaultSettings returns the settings a new design starts with.
func DefaultSettings() Settings {
	return Settings{
		Dims:       unfold.Dims{X: 100, Y: 60, Z: 40},
		Resolution: 4,
		Margin:     10,
		Template:   unfold.CrossTemplate(),
		BrushSize:  5,
	}
}

// State holds the design: settings, the derived layout, the mask and
// pattern rasters, and a version counter bumped by every visible change.
type State struct {
	mu sync.RWMutex

	// Project
	projectPath string
	modified    bool

	settings Settings
	cache    *unfold.Cache
	layout   *unfold.Layout

	mask     *mask.Store
	patterns pattern.Map
	layer    *pattern.Layer
	nextID   int

	currentFace unfold.Face
	version     uint64

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	// EventLayoutChanged carries the new *unfold.Layout.
	EventLayoutChanged EventType = iota
	// EventMaskEdited carries the state version after the edit.
	EventMaskEdited
	// EventPatternsChanged carries the edited unfold.Face, or FaceNone
	// when the whole map was replaced.
	EventPatternsChanged
	// EventFaceSelected carries the selected unfold.Face.
	EventFaceSelected
	// EventBrushChanged carries the brush size.
	EventBrushChanged
	EventModified
	EventProjectLoaded
	EventProjectSaved
	// EventTemplatesChanged carries the names of newly registered templates.
	EventTemplatesChanged
)

// EventListener is called when an event occurs.
type EventListener func(data any)

// NewState creates a state for the given settings.
func NewState(settings Settings) (*State, error) {
	if err := validateBrush(settings.BrushSize); err != nil {
		return nil, err
	}
	cache := unfold.NewCache(16)
	l, err := cache.Layout(settings.Dims, settings.Resolution, settings.Margin, settings.Template)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	settings.Template = settings.Template.Clone()
	return &State{
		settings:  settings,
		cache:     cache,
		layout:    l,
		mask:      mask.NewStore(l.Width, l.Height),
		patterns:  pattern.Map{},
		layer:     pattern.NewLayer(l.Width, l.Height),
		listeners: make(map[EventType][]EventListener),
	}, nil
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data any) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Settings returns a copy of the current settings.
func (s *State) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.Template = out.Template.Clone()
	return out
}

// Layout returns the current layout. Layouts are immutable.
func (s *State) Layout() *unfold.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// Mask returns the mask store.
func (s *State) Mask() *mask.Store {
	return s.mask
}

// PatternLayer returns the rendered pattern raster.
func (s *State) PatternLayer() *pattern.Layer {
	return s.layer
}

// Version returns the design version.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Modified reports whether there are unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// ProjectPath returns the path of the last loaded or saved project.
func (s *State) ProjectPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectPath
}

// LayoutCacheStats reports layout cache hits and misses.
func (s *State) LayoutCacheStats() (hits, misses int) {
	return s.cache.Stats()
}

// ApplySettings validates and installs new settings. When the derived
// layout changes, the patterns are re-rendered. The mask content is kept
// unless the atlas geometry changed, in which case both rasters are
// recreated at the new atlas size.
func (s *State) ApplySettings(next Settings) error {
	if err := validateBrush(next.BrushSize); err != nil {
		return err
	}
	l, err := s.cache.Layout(next.Dims, next.Resolution, next.Margin, next.Template)
	if err != nil {
		applog.Logger().Warn("settings rejected", "err", err)
		return fmt.Errorf("build layout: %w", err)
	}
	next.Template = next.Template.Clone()

	s.mu.Lock()
	brushChanged := next.BrushSize != s.settings.BrushSize
	layoutChanged := !l.SameInputs(s.layout)
	s.settings = next
	if layoutChanged {
		if !l.SameGeometry(s.layout) {
			s.mask.Resize(l.Width, l.Height)
			s.layer.Resize(l.Width, l.Height)
		}
		s.layout = l
		s.layer.RenderMap(l, s.patterns)
		s.version++
	}
	if layoutChanged || brushChanged {
		s.modified = true
	}
	s.mu.Unlock()

	if layoutChanged {
		applog.Logger().Info("layout rebuilt",
			"template", l.Template.Name, "width", l.Width, "height", l.Height)
		s.Emit(EventLayoutChanged, l)
	}
	if brushChanged {
		s.Emit(EventBrushChanged, next.BrushSize)
	}
	if layoutChanged || brushChanged {
		s.Emit(EventModified, true)
	}
	return nil
}

// SetDims changes the box dimensions.
func (s *State) SetDims(d unfold.Dims) error {
	next := s.Settings()
	next.Dims = d
	return s.ApplySettings(next)
}

// SetResolution changes the pixels per physical unit.
func (s *State) SetResolution(r float64) error {
	next := s.Settings()
	next.Resolution = r
	return s.ApplySettings(next)
}

// SetMargin changes the pixel gap around and between cells.
func (s *State) SetMargin(m int) error {
	next := s.Settings()
	next.Margin = m
	return s.ApplySettings(next)
}

// SetTemplate installs a template after validating it.
func (s *State) SetTemplate(t unfold.GridTemplate) error {
	next := s.Settings()
	next.Template = t
	return s.ApplySettings(next)
}

// SetTemplateName installs a registered template.
func (s *State) SetTemplateName(name string) error {
	t, ok := unfold.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return s.SetTemplate(t)
}

// SetBrushSize sets the brush radius in physical units.
func (s *State) SetBrushSize(size float64) error {
	next := s.Settings()
	next.BrushSize = size
	return s.ApplySettings(next)
}

// BrushRadiusPx returns the brush radius in atlas pixels.
func (s *State) BrushRadiusPx() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.BrushSize * s.settings.Resolution
}

func validateBrush(size float64) error {
	if !(size > 0) || math.IsInf(size, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidBrush, size)
	}
	return nil
}

// MaskEdited records a mask mutation made through the store. It is the
// callback handed to brush strokes.
func (s *State) MaskEdited(maskVersion uint64) {
	s.mu.Lock()
	s.version++
	v := s.version
	s.modified = true
	s.mu.Unlock()

	applog.Logger().Debug("mask edited", "mask_version", maskVersion, "version", v)
	s.Emit(EventMaskEdited, v)
}

// ClearMask erases the whole mask.
func (s *State) ClearMask() {
	s.MaskEdited(s.mask.Clear())
}

// SelectFace makes face the current face.
func (s *State) SelectFace(face unfold.Face) {
	s.mu.Lock()
	s.currentFace = face
	s.mu.Unlock()
	s.Emit(EventFaceSelected, face)
}

// CurrentFace returns the selected face, or FaceNone.
func (s *State) CurrentFace() unfold.Face {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFace
}

// Patterns returns a copy of the pattern map.
func (s *State) Patterns() pattern.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patterns.Clone()
}

// FacePatterns returns a copy of one face's stack.
func (s *State) FacePatterns(face unfold.Face) []pattern.FacePattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]pattern.FacePattern(nil), s.patterns[face]...)
}

// AddPattern appends a new pattern of the given kind with default
// parameters to the face's stack.
func (s *State) AddPattern(face unfold.Face, kind pattern.Kind) (pattern.FacePattern, error) {
	fp := pattern.FacePattern{
		Kind:   kind,
		Params: pattern.DefaultParams(),
		Op:     pattern.OpPaint,
		Fill:   pattern.FillInside,
	}
	return s.AddFacePattern(face, fp)
}

// AddFacePattern appends fp to the face's stack, assigning an ID when fp
// has none.
func (s *State) AddFacePattern(face unfold.Face, fp pattern.FacePattern) (pattern.FacePattern, error) {
	if err := fp.Validate(); err != nil {
		return pattern.FacePattern{}, err
	}
	var out pattern.FacePattern
	err := s.editPatterns(face, func() bool {
		if fp.ID == "" {
			s.nextID++
			fp.ID = "p" + strconv.Itoa(s.nextID)
		}
		s.patterns.Add(face, fp)
		out = fp
		return true
	})
	return out, err
}

// UpdatePattern replaces the pattern with the same ID.
func (s *State) UpdatePattern(face unfold.Face, fp pattern.FacePattern) (bool, error) {
	if err := fp.Validate(); err != nil {
		return false, err
	}
	var found bool
	err := s.editPatterns(face, func() bool {
		found = s.patterns.Replace(face, fp)
		return found
	})
	return found, err
}

// RemovePattern deletes a pattern from the face's stack.
func (s *State) RemovePattern(face unfold.Face, id string) (bool, error) {
	var found bool
	err := s.editPatterns(face, func() bool {
		found = s.patterns.Remove(face, id)
		return found
	})
	return found, err
}

// MovePattern shifts a pattern within the face's stack.
func (s *State) MovePattern(face unfold.Face, id string, delta int) (bool, error) {
	var found bool
	err := s.editPatterns(face, func() bool {
		found = s.patterns.Move(face, id, delta)
		return found
	})
	return found, err
}

// ClearFacePatterns removes every pattern from the face.
func (s *State) ClearFacePatterns(face unfold.Face) error {
	return s.editPatterns(face, func() bool {
		if len(s.patterns[face]) == 0 {
			return false
		}
		delete(s.patterns, face)
		return true
	})
}

// SetPatterns replaces the whole pattern map.
func (s *State) SetPatterns(m pattern.Map) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.patterns = m.Clone()
	s.nextID = max(s.nextID, highestID(m))
	s.rerenderLocked()
	s.mu.Unlock()

	s.Emit(EventPatternsChanged, unfold.FaceNone)
	s.Emit(EventModified, true)
	return nil
}

// editPatterns runs fn under the lock and re-renders the pattern layer
// when fn reports a change.
func (s *State) editPatterns(face unfold.Face, fn func() bool) error {
	s.mu.Lock()
	if _, ok := s.layout.FaceRects[face]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrFaceNotInLayout, face)
	}
	changed := fn()
	if changed {
		s.rerenderLocked()
	}
	s.mu.Unlock()

	if changed {
		s.Emit(EventPatternsChanged, face)
		s.Emit(EventModified, true)
	}
	return nil
}

func (s *State) rerenderLocked() {
	s.layer.RenderMap(s.layout, s.patterns)
	s.version++
	s.modified = true
}

// highestID returns the largest n among IDs of the form "p<n>".
func highestID(m pattern.Map) int {
	n := 0
	for _, list := range m {
		for _, fp := range list {
			if v, err := strconv.Atoi(strings.TrimPrefix(fp.ID, "p")); err == nil && strings.HasPrefix(fp.ID, "p") {
				n = max(n, v)
			}
		}
	}
	return n
}

// NewProject discards the design and starts over with settings: no
// patterns, an empty mask and no project file.
func (s *State) NewProject(settings Settings) error {
	if err := s.ApplySettings(settings); err != nil {
		return err
	}
	if err := s.SetPatterns(pattern.Map{}); err != nil {
		return err
	}
	s.ClearMask()

	s.mu.Lock()
	s.projectPath = ""
	s.modified = false
	s.nextID = 0
	s.currentFace = unfold.FaceNone
	s.mu.Unlock()

	s.Emit(EventFaceSelected, unfold.FaceNone)
	s.Emit(EventProjectLoaded, "")
	return nil
}

// LoadProject loads settings and patterns from a project file. The mask
// starts empty.
func (s *State) LoadProject(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}
	tmpl, err := proj.Template.Grid()
	if err != nil {
		return fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}

	next := Settings{
		Dims:       proj.Dims,
		Resolution: proj.Resolution,
		Margin:     proj.Margin,
		Template:   tmpl,
		BrushSize:  proj.BrushSize,
	}
	if next.BrushSize <= 0 {
		next.BrushSize = DefaultSettings().BrushSize
	}
	if err := s.ApplySettings(next); err != nil {
		return err
	}
	if err := s.SetPatterns(proj.Patterns); err != nil {
		return err
	}
	s.ClearMask()

	s.mu.Lock()
	s.projectPath = path
	s.modified = false
	s.mu.Unlock()

	applog.Logger().Info("project loaded", "path", path)
	s.Emit(EventProjectLoaded, path)
	return nil
}

// SaveProject saves settings and patterns to a project file.
func (s *State) SaveProject(path string) error {
	s.mu.RLock()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	proj := project.New(name)
	proj.Dims = s.settings.Dims
	proj.Resolution = s.settings.Resolution
	proj.Margin = s.settings.Margin
	proj.Template = project.FromGrid(s.settings.Template)
	proj.BrushSize = s.settings.BrushSize
	proj.Patterns = s.patterns.Clone()
	s.mu.RUnlock()

	if err := proj.Save(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.mu.Lock()
	s.projectPath = path
	s.modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}
