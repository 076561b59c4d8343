// Package watch monitors a drop directory for freshly written engine output
// and normalizes each job directory once it goes quiet.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dinobot22/mineru-tianshu/internal/logfields"
	"github.com/dinobot22/mineru-tianshu/internal/normalize"
)

// Normalizer processes one output directory. *normalize.Pipeline satisfies it.
type Normalizer interface {
	Normalize(ctx context.Context, dir string) (*normalize.Result, error)
}

// Watcher monitors a root directory. Every first-level subdirectory is one
// engine job; events inside a job reset its quiet-window timer so a job is
// normalized only after the engine has finished writing it.
type Watcher struct {
	root       string
	normalizer Normalizer
	watcher    *fsnotify.Watcher
	debounce   time.Duration

	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a watcher over root. Jobs already present under root are not
// picked up; only directories written after Start are normalized.
func New(root string, normalizer Normalizer, debounce time.Duration) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("watch root is not a directory: %s", absRoot)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		root:       absRoot,
		normalizer: normalizer,
		watcher:    fsWatcher,
		debounce:   debounce,
		timers:     make(map[string]*time.Timer),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins monitoring. It returns once the watch is registered; event
// handling runs in a background goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	slog.Info("Watching for engine output", slog.String("root", w.root),
		slog.Duration("debounce", w.debounce))

	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher and cancels pending quiet-window timers. Jobs whose
// timer already fired finish normalizing.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		for dir, timer := range w.timers {
			timer.Stop()
			delete(w.timers, dir)
		}
		w.mu.Unlock()

		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	job, ok := jobDir(w.root, event.Name)
	if !ok {
		return
	}

	// Watch directories as they appear so writes deep inside a job (page
	// folders, asset folders) keep resetting its timer.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				slog.Warn("Failed to watch subdirectory", slog.String("dir", event.Name), logfields.Error(err))
			}
		}
	}

	w.scheduleNormalize(ctx, filepath.Join(w.root, job))
}

// scheduleNormalize resets the job's quiet-window timer.
func (w *Watcher) scheduleNormalize(ctx context.Context, dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}

	if timer, ok := w.timers[dir]; ok {
		timer.Stop()
	}
	w.timers[dir] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, dir)
		w.mu.Unlock()
		w.runNormalize(ctx, dir)
	})
}

func (w *Watcher) runNormalize(ctx context.Context, dir string) {
	res, err := w.normalizer.Normalize(ctx, dir)
	if err != nil {
		slog.Error("Failed to normalize job directory", slog.String("dir", dir), logfields.Error(err))
		return
	}
	slog.Info("Job directory normalized", slog.String("dir", dir),
		logfields.AssetCount(res.ImageCount), logfields.Uploaded(res.UploadedCount))
}

// jobDir maps an event path to its first-level directory under root. Events
// on root itself carry no job.
func jobDir(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	if parts[0] == "" {
		return "", false
	}
	return parts[0], true
}
