package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/pattern"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.boxnet")

	p := New("box")
	p.Dims = unfold.Dims{X: 100, Y: 60, Z: 40}
	p.Resolution = 4
	p.Margin = 10
	p.BrushSize = 5
	p.Template = FromGrid(unfold.CrossTemplate())
	p.Patterns.Add(unfold.FacePZ, pattern.FacePattern{
		ID: "p1", Kind: pattern.KindBandH, Params: pattern.DefaultParams(),
		Op: pattern.OpPaint, Fill: pattern.FillInside,
	})
	require.NoError(t, p.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Dims, got.Dims)
	assert.Equal(t, 10, got.Margin)
	assert.Equal(t, p.Patterns, got.Patterns)

	grid, err := got.Template.Grid()
	require.NoError(t, err)
	assert.Equal(t, unfold.CrossTemplate().Key(), grid.Key())
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.boxnet")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestLoadRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.boxnet")
	body := `{"version":1,"patterns":{"+X":[{"id":"a","kind":"spiral","op":"paint","fill":"inside"}]}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)
}
