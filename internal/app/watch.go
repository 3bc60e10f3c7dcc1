package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/squall321/SmartTwinCluster-sub006/internal/applog"
	"github.com/squall321/SmartTwinCluster-sub006/internal/unfold"
)

// TemplateWatcher re-registers the templates of a YAML file whenever the
// file's modification time advances. Changes are picked up from fsnotify
// events on the file's directory, with a periodic poll as the fallback.
type TemplateWatcher struct {
	path          string
	checkInterval time.Duration

	mu       sync.Mutex
	modTime  time.Time
	stopCh   chan struct{}
	onReload func(names []string, err error)
}

// NewTemplateWatcher creates a watcher for path. The current modification
// time is the baseline, so nothing reloads until the file changes. Returns
// nil if the file cannot be stat'ed.
func NewTemplateWatcher(path string, checkInterval time.Duration) *TemplateWatcher {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &TemplateWatcher{
		path:          path,
		checkInterval: checkInterval,
		modTime:       info.ModTime(),
	}
}

// OnReload sets the callback invoked after each reload attempt. The
// callback runs on the watcher goroutine.
func (w *TemplateWatcher) OnReload(callback func(names []string, err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// Start begins watching in a background goroutine.
func (w *TemplateWatcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop stops the watcher goroutine.
func (w *TemplateWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *TemplateWatcher) watchLoop(stop <-chan struct{}) {
	log := applog.Logger()
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw, err := fsnotify.NewWatcher(); err != nil {
		log.Debug("file events unavailable, polling", "path", w.path, "err", err)
	} else {
		defer fw.Close()
		if err := fw.Add(filepath.Dir(w.path)); err != nil {
			log.Debug("file events unavailable, polling", "path", w.path, "err", err)
		} else {
			events, errs = fw.Events, fw.Errors
		}
	}

	target := filepath.Clean(w.path)
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Chmod
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == target && ev.Op&relevant != 0 {
				w.Check()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("template watch error", "path", w.path, "err", err)
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check reloads the file if it changed since the last check and reports
// whether a reload was attempted.
func (w *TemplateWatcher) Check() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}

	w.mu.Lock()
	if !info.ModTime().After(w.modTime) {
		w.mu.Unlock()
		return false
	}
	w.modTime = info.ModTime()
	callback := w.onReload
	w.mu.Unlock()

	names, err := unfold.LoadTemplates(w.path)
	if err != nil {
		applog.Logger().Warn("template reload failed", "path", w.path, "err", err)
	} else {
		applog.Logger().Info("templates reloaded", "path", w.path, "count", len(names))
	}
	if callback != nil {
		callback(names, err)
	}
	return true
}

// WatchTemplates reloads path into the registry on change and emits
// EventTemplatesChanged on success.
func (s *State) WatchTemplates(path string, interval time.Duration) *TemplateWatcher {
	w := NewTemplateWatcher(path, interval)
	if w == nil {
		return nil
	}
	w.OnReload(func(names []string, err error) {
		if err == nil {
			s.Emit(EventTemplatesChanged, names)
		}
	})
	w.Start()
	return w
}
