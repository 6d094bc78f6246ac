package mediaindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ChangeCallback is invoked after the library changed and the event burst
// settled.
type ChangeCallback func()

// Watcher observes the media library for external changes. The index is
// externally owned and never notifies on its own, so the watcher is how the
// rest of the system learns that previously fetched pages went stale.
//
// Events are debounced: a copy of many files produces one callback, not one
// per file.
type Watcher struct {
	root     string
	debounce time.Duration

	watcher   *fsnotify.Watcher
	watchDirs map[string]bool
	callbacks []ChangeCallback
	mutex     sync.RWMutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewWatcher(root string) *Watcher {
	return &Watcher{
		root:      filepath.Clean(root),
		debounce:  500 * time.Millisecond,
		watchDirs: make(map[string]bool),
	}
}

// AddCallback registers a change callback. Callbacks run on the watch
// goroutine and must not block.
func (w *Watcher) AddCallback(cb ChangeCallback) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins watching the library root and all its subdirectories.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.stopCh = make(chan struct{})

	if err := w.addWatchTree(w.root); err != nil {
		// A missing root is fine: the library may appear later, and the
		// permission checker reports its absence independently.
		log.Debug().Err(err).Str("root", w.root).Msg("media root not watchable yet")
	}

	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	if w.watcher == nil {
		return nil
	}
	close(w.stopCh)
	w.wg.Wait()
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// addWatchTree watches dir and every non-hidden subdirectory.
func (w *Watcher) addWatchTree(dir string) error {
	return fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != "." && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.addWatchDir(filepath.Join(dir, path))
	})
}

func (w *Watcher) addWatchDir(dir string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.watchDirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watchDirs[dir] = true
	return nil
}

// watchLoop forwards debounced library changes to the callbacks.
func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	fire := func() {
		timerC = nil
		w.mutex.RLock()
		callbacks := make([]ChangeCallback, len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mutex.RUnlock()
		for _, cb := range callbacks {
			cb()
		}
	}

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			// New directories join the watch set so nested additions keep
			// arriving.
			if event.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addWatchTree(event.Name); err != nil {
						log.Error().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			fire()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("media library watcher error")
		}
	}
}

// relevant filters out events for hidden files and in-flight temp copies.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	rel, err := filepath.Rel(w.root, filepath.Clean(event.Name))
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return true
}
