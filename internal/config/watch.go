package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
)

const debounceInterval = 100 * time.Millisecond

// Watcher reloads the configuration when its .env file changes.
type Watcher struct {
	mu            sync.Mutex
	path          string
	watcher       *fsnotify.Watcher
	onChange      func(*Config)
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
}

// Watch starts watching envFile. onChange receives every configuration that
// loads successfully after a write; invalid edits are logged and ignored.
func Watch(envFile string, onChange func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory so editors that replace the file are noticed
	if err := watcher.Add(filepath.Dir(envFile)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, err
	}

	w := &Watcher{
		path:     envFile,
		watcher:  watcher,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.mu.Lock()
			if w.debounceTimer != nil {
				w.debounceTimer.Stop()
			}
			w.debounceTimer = time.AfterFunc(debounceInterval, w.reload)
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("config watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.stopChan:
		return
	default:
	}

	cfg, err := Reload(w.path)
	if err != nil {
		logger.Warn("ignoring invalid config change", "path", w.path, "error", err)
		return
	}
	logger.Info("config reloaded", "path", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
