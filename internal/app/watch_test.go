package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

const watchedYAML = `templates:
  - name: watched-pair
    rows:
      - ["+X", "-X", "+Y"]
      - ["-Y", "+Z", "-Z"]
`

func TestTemplateWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: []\n"), 0644))

	w := NewTemplateWatcher(path, time.Hour)
	require.NotNil(t, w)

	var got []string
	w.OnReload(func(names []string, err error) {
		require.NoError(t, err)
		got = names
	})
	assert.False(t, w.Check(), "unchanged file")

	require.NoError(t, os.WriteFile(path, []byte(watchedYAML), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	assert.True(t, w.Check())
	assert.Equal(t, []string{"watched-pair"}, got)
	_, ok := unfold.Lookup("watched-pair")
	assert.True(t, ok)

	assert.False(t, w.Check(), "already reloaded")
}

func TestTemplateWatcherMissingFile(t *testing.T) {
	assert.Nil(t, NewTemplateWatcher(filepath.Join(t.TempDir(), "absent.yaml"), time.Second))
}

func TestWatchTemplatesStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(watchedYAML), 0644))

	s := newState(t)
	w := s.WatchTemplates(path, 10*time.Millisecond)
	require.NotNil(t, w)
	w.Stop()
	w.Stop()
}

func TestTemplateWatcherPicksUpFileEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates: []\n"), 0644))

	w := NewTemplateWatcher(path, time.Hour)
	require.NotNil(t, w)
	var (
		mu  sync.Mutex
		got []string
	)
	w.OnReload(func(names []string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			got = names
		}
	})
	w.Start()
	t.Cleanup(w.Stop)

	// The watch is registered asynchronously; keep bumping the file until
	// an event arrives.
	assert.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(watchedYAML), 0644); err != nil {
			return false
		}
		later := time.Now().Add(time.Hour)
		if err := os.Chtimes(path, later, later); err != nil {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 5*time.Second, 50*time.Millisecond)
}
