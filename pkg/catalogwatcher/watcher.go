package catalogwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"hilfo_survey_backend/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader is called once per debounced change burst. It reloads and
// validates the catalog sources itself; a failed reload keeps the
// previous catalog in place.
type Reloader func() error

// Watch re-runs the reloader when any of the catalog source files
// changes on disk, debounced so editors that write in several steps
// trigger one reload. Blocks until the context is cancelled.
func Watch(ctx context.Context, paths []string, reloader Reloader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the parent directories: editors replace files by rename,
	// which drops a watch registered on the file itself.
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		dirs[filepath.Dir(abs)] = true
	}
	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, _ := filepath.Abs(p)
		watched[abs] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	var mu sync.Mutex
	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(1 * time.Second)
			mu.Unlock()
		case <-timer.C:
			if err := reloader(); err != nil {
				logger.Log.Error("catalog reload failed, keeping previous catalog", zap.Error(err))
				continue
			}
			logger.Log.Info("catalogs reloaded from disk")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("catalog watcher error", zap.Error(err))
		}
	}
}
