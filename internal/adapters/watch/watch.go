package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 150 * time.Millisecond

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
}

func ShouldSkipDir(name string) bool {
	_, exists := skipDirs[name]
	return exists
}

var rebuildExts = map[string]bool{
	".ts":   true,
	".tsx":  true,
	".js":   true,
	".jsx":  true,
	".css":  true,
	".less": true,
	".json": true,
	".html": true,
}

func ShouldRebuildForPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return rebuildExts[ext]
}

// Watcher reports source changes under a project, ignoring the build output.
type Watcher struct {
	fsw      *fsnotify.Watcher
	ignore   []string
	debounce time.Duration
	logger   *slog.Logger
}

// New starts watching root recursively. Directories under any ignored path
// are not watched.
func New(root string, ignore []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   logger,
	}
	for _, path := range ignore {
		if abs, err := filepath.Abs(path); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}

	if err := w.watchDirs(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run calls onChange once per burst of relevant events until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	var (
		timer   *time.Timer
		pending string
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if shouldAddWatchDir(event) {
				if err := w.watchDirs(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
				}
				continue
			}
			if !isWatchEvent(event.Op) || !ShouldRebuildForPath(event.Name) {
				continue
			}

			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(pending)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, prefix := range w.ignore {
		if abs == prefix || strings.HasPrefix(abs, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) watchDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", "path", path, "error", err)
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if ShouldSkipDir(d.Name()) || w.ignored(path) {
			return filepath.SkipDir
		}

		return w.fsw.Add(path)
	})
}

func isWatchEvent(op fsnotify.Op) bool {
	return op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

func shouldAddWatchDir(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create == 0 {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}

	return info.IsDir() && !ShouldSkipDir(info.Name())
}
