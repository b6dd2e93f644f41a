// Package watcher turns filesystem notifications for a synchronized file
// into change events the sync engine consumes. It watches the file's
// containing directory (editors replace files via rename, which a per-file
// watch would lose) and filters events down to the backing file itself.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed on the watched file.
type Op int

const (
	// OpCreate indicates the file appeared.
	OpCreate Op = iota
	// OpModify indicates the file content changed.
	OpModify
	// OpDelete indicates the file was removed or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event is one observed change of the watched file.
type Event struct {
	// Path is the absolute path of the file that changed.
	Path string
	// Op is the operation that occurred.
	Op Op
}

// FileWatcher watches the directory containing a single synchronized file
// and emits an Event whenever that file changes. It uses fsnotify for
// cross-platform file system event monitoring.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	logger  *logger.Logger

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	running  bool
	filePath string
}

// NewFileWatcher creates a FileWatcher. The watcher must be started with
// Start before it emits events.
func NewFileWatcher(log *logger.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: watcher,
		logger:  log,
		events:  make(chan Event, 64),
		errors:  make(chan error, 8),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching the directory containing filePath for changes to
// that file. Returns an error if the directory cannot be watched.
func (fw *FileWatcher) Start(filePath string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("watcher already running")
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("resolve watch path %s: %w", filePath, err)
	}
	fw.filePath = abs

	dir := filepath.Dir(abs)
	if err = fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	fw.running = true
	fw.wg.Add(1)
	go fw.processEvents()

	fw.logger.Debug().Str("file", abs).Str("dir", dir).Msg("file watcher started")
	return nil
}

// Stop stops watching and cleans up resources. It blocks until the event
// processing goroutine has exited. Safe to call when not running.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.done)

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	fw.wg.Wait()

	close(fw.events)
	close(fw.errors)

	return nil
}

// Events returns the channel that emits change notifications for the
// watched file. Closed when the watcher is stopped.
func (fw *FileWatcher) Events() <-chan Event {
	return fw.events
}

// Errors returns the channel that emits watch errors. Closed when the
// watcher is stopped.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// IsRunning reports whether the watcher is currently running.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if converted, relevant := fw.convertEvent(event); relevant {
				select {
				case fw.events <- converted:
				case <-fw.done:
					return
				}
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.done:
				return
			}
		}
	}
}

// convertEvent maps an fsnotify event to an Event. Returns false for events
// on other files in the directory and for chmod-only notifications.
func (fw *FileWatcher) convertEvent(event fsnotify.Event) (Event, bool) {
	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != fw.filePath {
		return Event{}, false
	}

	var op Op
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		// Rename away is a delete; a save-via-rename surfaces as a
		// subsequent create of the same path.
		op = OpDelete
	default:
		return Event{}, false
	}

	return Event{Path: abs, Op: op}, true
}
