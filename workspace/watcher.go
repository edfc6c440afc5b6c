package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watch re-parses changed files under the root until ctx is done. Bursts of
// events are coalesced; onChange, if set, receives the paths handled by each
// flush.
func (w *Workspace) Watch(ctx context.Context, delay time.Duration, onChange func(paths []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create fsnotify watcher")
	}
	defer watcher.Close()

	if err := w.watchTree(watcher, w.root); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
	)
	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]struct{})
		mu.Unlock()

		for _, p := range paths {
			w.refresh(ctx, p)
		}
		if onChange != nil && len(paths) > 0 {
			onChange(paths)
		}
	}
	debounced := debounce.New(delay)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchTree(watcher, event.Name); err != nil {
						w.logger.Warnw("failed to watch directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !w.scanner.Supports(filepath.Base(event.Name)) {
				continue
			}
			w.logger.Debugw("file changed", "path", event.Name, "op", event.Op.String())
			mu.Lock()
			pending[event.Name] = struct{}{}
			mu.Unlock()
			debounced(flush)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("file watcher error", "error", err)
		}
	}
}

// watchTree adds dir and its subdirectories to the watcher, skipping
// ignored directories.
func (w *Workspace) watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.scanner.IgnoresDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}

// refresh re-parses the file at path, or forgets it when it is gone. Open
// buffers win over the disk.
func (w *Workspace) refresh(ctx context.Context, path string) {
	w.Invalidate(path)
	if _, err := os.Stat(path); err != nil && !w.overlays.Has(path) {
		return
	}
	if _, err := w.Document(ctx, path); err != nil {
		w.logger.Warnw("failed to re-index file", "path", path, "error", err)
	}
}
