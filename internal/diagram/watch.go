package diagram

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce lets the external renderer finish writing before the
// layout file is re-read.
const reloadDebounce = 200 * time.Millisecond

// Watcher reloads the layout document whenever the external renderer
// rewrites it, and delivers the freshly parsed diagram on Updates. A
// malformed rewrite is logged and the previous diagram stays in effect.
type Watcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	logger    *slog.Logger

	updates chan *Diagram

	done chan struct{}
	wg   sync.WaitGroup
}

// Watch starts watching the layout file at path. The file's directory is
// watched rather than the file itself so atomic rename-into-place rewrites
// are seen.
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve layout path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch layout directory: %w", err)
	}

	w := &Watcher{
		path:      absPath,
		fsWatcher: fsWatcher,
		logger:    logger,
		updates:   make(chan *Diagram, 1),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.eventLoop()
	return w, nil
}

// Updates returns the channel of reloaded diagrams.
func (w *Watcher) Updates() <-chan *Diagram {
	return w.updates
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	close(w.updates)
	return err
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
				fire = debounce.C
			} else {
				debounce.Reset(reloadDebounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("layout watch error", "error", err)

		case <-fire:
			debounce = nil
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if _, err := os.Stat(w.path); err != nil {
		w.logger.Warn("layout file missing after rewrite", "path", w.path, "error", err)
		return
	}

	d, err := Load(w.path)
	if err != nil {
		w.logger.Warn("layout reload failed, keeping previous diagram",
			"path", w.path, "error", err)
		return
	}

	// Replace any undelivered diagram with the newer one.
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- d:
	case <-w.done:
	}

	w.logger.Info("diagram reloaded", "path", w.path, "nodes", len(d.Nodes))
}
