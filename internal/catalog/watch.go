package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bloomedge/storefront/internal/obs"
)

// Watch reloads the seed file whenever it changes, until ctx is cancelled.
// Reload failures keep the previous catalog; cart lines are never touched by
// a reload, they keep the prices captured at add-time.
func (s *Store) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors and atomic writers replace the file, which
	// drops a watch set on the file itself.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	go s.watchLoop(ctx, w, path)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, path string) {
	defer w.Close()
	var debounce *time.Timer
	reload := func() {
		if err := s.LoadSeed(path); err != nil {
			obs.Logger.Warn("catalog_reload_failed", "path", path, "error", err)
			return
		}
		obs.Logger.Info("catalog_reloaded", "path", path, "products", len(s.List(ListFilter{})))
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			// Coalesce the burst of events a single save produces.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, reload)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			obs.Logger.Warn("catalog_watch_error", "error", err)
		}
	}
}
