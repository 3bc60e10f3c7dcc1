package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boxapp "github.com/squall321/SmartTwinCluster-sub006/internal/app"
	"github.com/squall321/SmartTwinCluster-sub006/internal/surface"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
	"github.com/squall321/SmartTwinCluster-sub006/ui/prefs"
)

func parse(t *testing.T, args ...string) (*options, func(*prefs.Prefs) (boxapp.Settings, error)) {
	t.Helper()
	var opts options
	fs := newFlagSet(&opts)
	require.NoError(t, fs.Parse(args))
	return &opts, func(p *prefs.Prefs) (boxapp.Settings, error) {
		return resolveSettings(fs, &opts, p)
	}
}

func emptyPrefs(t *testing.T) *prefs.Prefs {
	return prefs.LoadFile(filepath.Join(t.TempDir(), "preferences.json"))
}

func TestResolveSettingsDefaults(t *testing.T) {
	_, resolve := parse(t)
	s, err := resolve(emptyPrefs(t))
	require.NoError(t, err)

	d := boxapp.DefaultSettings()
	assert.Equal(t, d.Dims, s.Dims)
	assert.Equal(t, d.Resolution, s.Resolution)
	assert.Equal(t, d.Margin, s.Margin)
	assert.Equal(t, d.BrushSize, s.BrushSize)
	assert.Equal(t, unfold.PresetCross, s.Template.Name)
}

func TestResolveSettingsFlagsOverridePrefs(t *testing.T) {
	p := emptyPrefs(t)
	p.SetFloat(prefs.KeySizeX, 80)
	p.SetFloat(prefs.KeyMargin, 4)
	p.SetString(prefs.KeyTemplate, unfold.PresetStrip)

	_, resolve := parse(t, "--size-x", "120", "-t", unfold.PresetCompact, "--brush=2.5")
	s, err := resolve(p)
	require.NoError(t, err)

	assert.Equal(t, 120.0, s.Dims.X, "flag wins")
	assert.Equal(t, 4, s.Margin, "preference used when the flag is unset")
	assert.Equal(t, 2.5, s.BrushSize)
	assert.Equal(t, unfold.PresetCompact, s.Template.Name)
}

func TestResolveSettingsTemplateFallback(t *testing.T) {
	p := emptyPrefs(t)
	p.SetString(prefs.KeyTemplate, "gone")
	_, resolve := parse(t)
	s, err := resolve(p)
	require.NoError(t, err)
	assert.Equal(t, unfold.PresetCross, s.Template.Name, "stale preference falls back to the default")

	_, resolve = parse(t, "--template", "nope")
	_, err = resolve(p)
	assert.ErrorIs(t, err, boxapp.ErrUnknownTemplate)
}

func TestResolveView(t *testing.T) {
	p := emptyPrefs(t)
	p.SetString(prefs.KeyZoom, "200%")
	p.SetString(prefs.KeyMode, "erase")

	var opts options
	fs := newFlagSet(&opts)
	require.NoError(t, fs.Parse([]string{"--mode", "pattern-select"}))
	zoom, mode, err := resolveView(fs, &opts, p)
	require.NoError(t, err)
	assert.Equal(t, surface.FixedZoom(2), zoom)
	assert.Equal(t, surface.ModePatternSelect, mode)

	fs = newFlagSet(&opts)
	require.NoError(t, fs.Parse([]string{"--zoom", "huge"}))
	_, _, err = resolveView(fs, &opts, p)
	assert.ErrorIs(t, err, surface.ErrInvalidZoom)
}

func TestParseLevel(t *testing.T) {
	l, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestRunVersion(t *testing.T) {
	assert.NoError(t, run([]string{"--version"}))
	assert.Error(t, run([]string{"--no-such-flag"}))
}
