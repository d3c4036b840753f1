package scan

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/scryer/internal/walk"
)

// DefaultDebounce groups bursts of events on a file into one run.
const DefaultDebounce = 100 * time.Millisecond

// Watcher re-runs a Scanner on files as they are written.
type Watcher struct {
	scanner  *Scanner
	walker   *walk.Walker
	logger   *zap.Logger
	debounce time.Duration
}

func NewWatcher(s *Scanner, w *walk.Walker, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		scanner:  s,
		walker:   w,
		logger:   s.logger,
		debounce: debounce,
	}
}

// Watch blocks until ctx is done, processing every selected file that is
// created or written. ready, if not nil, is closed once the watches are in
// place.
func (w *Watcher) Watch(ctx context.Context, ready chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, err := w.walker.Dirs(ctx)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	w.logger.Info("Watching for changes", zap.String("root", w.walker.Root()), zap.Int("dirs", len(dirs)))
	if ready != nil {
		close(ready)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						w.logger.Warn("Cannot watch directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.walker.Selects(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watch error", zap.Error(err))

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for path := range pending {
				files = append(files, path)
			}
			sort.Strings(files)
			clear(pending)
			// Run only fails once ctx is done
			_ = w.scanner.Run(ctx, files)
		}
	}
}
