// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	appDir    = "boxnet"
	prefsFile = "preferences.json"
)

// Keys used by the application.
const (
	KeyLastDir    = "lastDirectory"
	KeySizeX      = "sizeX"
	KeySizeY      = "sizeY"
	KeySizeZ      = "sizeZ"
	KeyResolution = "resolution"
	KeyMargin     = "margin"
	KeyTemplate   = "template"
	KeyBrush      = "brush"
	KeyZoom       = "zoom"
	KeyMode       = "mode"
)

// Prefs stores application preferences as a key-value map.
type Prefs struct {
	mu      sync.RWMutex
	values  map[string]any
	path    string
	changed bool
}

// Load reads preferences from ~/.config/boxnet/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFile(filepath.Join(configDir, appDir, prefsFile))
}

// LoadFile reads preferences from path. A missing or unreadable file
// yields empty preferences that will be saved to path.
func LoadFile(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]any),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the file preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.changed = false
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// SaveIfChanged writes preferences only when a value was set since the
// last save.
func (p *Prefs) SaveIfChanged() error {
	p.mu.RLock()
	changed := p.changed
	p.mu.RUnlock()
	if !changed {
		return nil
	}
	return p.Save()
}

// Has reports whether key is set.
func (p *Prefs) Has(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.values[key]
	return ok
}

// FloatWithFallback returns a float64 preference, or fallback if not set.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// StringWithFallback returns a string preference, or fallback if not set.
func (p *Prefs) StringWithFallback(key, fallback string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	return p.StringWithFallback(key, "")
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

func (p *Prefs) set(key string, val any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.values[key]; ok && old == val {
		return
	}
	p.values[key] = val
	p.changed = true
}
