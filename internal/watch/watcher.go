package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ChangedHandler is called when a watched source file is rewritten on disk.
type ChangedHandler func(token string, data []byte)

// Watcher re-reads externally edited source images. Loading a file for
// analysis registers it here, so saving over it in an image editor pushes
// the fresh bytes back into the app.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange ChangedHandler
	mu       sync.RWMutex
	watching map[string]string // absolute path -> token
}

func New(onChange ChangedHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		watching: make(map[string]string),
	}

	go w.watchLoop()

	return w, nil
}

// Watch starts watching a file under the given token. Watching a new path
// with an existing token replaces the old registration.
func (w *Watcher) Watch(token, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	for p, t := range w.watching {
		if t == token {
			delete(w.watching, p)
		}
	}
	w.watching[absPath] = token
	w.mu.Unlock()

	// Watch the directory (fsnotify watches dirs for file events)
	return w.fsw.Add(filepath.Dir(absPath))
}

// Stop removes the registration for a token.
func (w *Watcher) Stop(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.watching {
		if t == token {
			delete(w.watching, path)
			break
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				absPath, _ := filepath.Abs(event.Name)
				w.mu.RLock()
				token, watched := w.watching[absPath]
				w.mu.RUnlock()

				if watched {
					data, err := os.ReadFile(absPath)
					if err != nil {
						log.Printf("watch: read %s: %v", absPath, err)
						continue
					}
					if w.onChange != nil && len(data) > 0 {
						w.onChange(token, data)
					}
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: watcher error: %v", err)
		}
	}
}
