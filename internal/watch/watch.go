package watch

import (
	"context"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"website/internal/logging"
)

const defaultDebounce = 200 * time.Millisecond

// Invalidator is flushed after a burst of content changes.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Watcher clears the website caches when files under the page roots change.
type Watcher struct {
	dirs     []string
	target   Invalidator
	debounce time.Duration
	logger   *zap.Logger
	fsw      *fsnotify.Watcher
}

func New(dirs []string, target Invalidator, logger *zap.Logger) *Watcher {
	return &Watcher{
		dirs:     dirs,
		target:   target,
		debounce: defaultDebounce,
		logger:   logging.OrNop(logger),
	}
}

// Watch registers every directory below the configured roots.
func (w *Watcher) Watch() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fsw = fsw

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return err
		}
	}
	return nil
}

// Run delivers change notifications until ctx is done. Watch must have
// succeeded first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]fsnotify.Op)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			pending[ev.Name] |= ev.Op
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]fsnotify.Op)
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]fsnotify.Op) {
	if len(pending) == 0 {
		return
	}

	files := make([]string, 0, len(pending))
	for name := range pending {
		files = append(files, name)
	}
	if err := w.target.InvalidateAll(ctx); err != nil {
		w.logger.Error("invalidate after content change", zap.Strings("files", files), zap.Error(err))
		return
	}
	w.logger.Info("content changed", zap.Strings("files", files))
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(name string, entry iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		return w.fsw.Add(name)
	})
	if err != nil {
		return fmt.Errorf("watch %q: %w", root, err)
	}
	return nil
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(ev.Name)
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~") && !strings.HasSuffix(base, ".swp")
}
