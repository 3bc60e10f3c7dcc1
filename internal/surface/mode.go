package surface

import (
	"fmt"
	"strings"
)

// Mode selects what a press on the surface does.
type Mode string

const (
	ModePaint         Mode = "paint"
	ModeErase         Mode = "erase"
	ModePatternSelect Mode = "pattern-select"
)

// Modes returns every mode in menu order.
func Modes() []Mode {
	return []Mode{ModePaint, ModeErase, ModePatternSelect}
}

// Label returns the user-facing name.
func (m Mode) Label() string {
	switch m {
	case ModePaint:
		return "Paint"
	case ModeErase:
		return "Erase"
	case ModePatternSelect:
		return "Select face"
	}
	return string(m)
}

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModePaint, ModeErase, ModePatternSelect:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
