package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"boardpoints/internal/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileHandler is called with the absolute path of a file that changed and has
// been quiet for the debounce window.
type FileHandler func(ctx context.Context, path string) error

// FileWatcher re-runs a handler when watched files change. Directories are
// watched rather than files so editors that save by rename are still seen.
type FileWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	files       map[string]bool
	handler     FileHandler
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events        int
	Runs          int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// NewFileWatcher creates a watcher for paths.
func NewFileWatcher(paths []string, debounce time.Duration, handler FileHandler) (*FileWatcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		files[abs] = true
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher:     watcher,
		files:       files,
		handler:     handler,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	dirs := make(map[string]bool)
	for f := range fw.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.watcher.Add(dir); err != nil {
			fw.abort()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logging.Runner("watching directory", zap.String("dir", dir))
	}

	go fw.run(ctx)
	return nil
}

// abort releases the fsnotify watcher when Start fails before run begins.
func (fw *FileWatcher) abort() {
	fw.mu.Lock()
	fw.running = false
	fw.mu.Unlock()
	close(fw.doneCh)
	_ = fw.watcher.Close()
}

// Stop stops the watcher and waits for cleanup.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh

	if err := fw.watcher.Close(); err != nil {
		logging.RunnerError("error closing watcher", zap.Error(err))
	}
	logging.RunnerDebug("file watcher stopped")
}

// Stats returns a snapshot of watcher activity.
func (fw *FileWatcher) Stats() WatcherStats {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.stats
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	poll := fw.debounceDur / 5
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(poll)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-fw.stopCh:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.RunnerError("watcher error", zap.Error(err))
			fw.mu.Lock()
			fw.stats.Errors++
			fw.mu.Unlock()

		case <-debounceTicker.C:
			fw.processDebounced(ctx)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	path := filepath.Clean(event.Name)
	if !fw.files[path] {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.stats.Events++
	fw.stats.LastEventPath = path
	fw.stats.LastEventTime = time.Now()
	fw.debounceMap[path] = time.Now()
}

// processDebounced runs the handler for files quiet past the debounce window.
// Handlers run one at a time on the watcher goroutine.
func (fw *FileWatcher) processDebounced(ctx context.Context) {
	fw.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range fw.debounceMap {
		if now.Sub(at) >= fw.debounceDur {
			settled = append(settled, path)
			delete(fw.debounceMap, path)
		}
	}
	fw.mu.Unlock()

	for _, path := range settled {
		timer := logging.StartTimer(logging.CategoryRunner, "file handler")
		err := fw.handler(ctx, path)
		timer.Stop()
		fw.mu.Lock()
		fw.stats.Runs++
		if err != nil {
			fw.stats.Errors++
		}
		fw.mu.Unlock()
		if err != nil {
			logging.RunnerError("file handler failed", zap.String("path", path), zap.Error(err))
		}
	}
}
