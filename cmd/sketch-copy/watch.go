package main

import (
	"context"
	"path/filepath"
	"time"

	sketchcopy "github.com/kataras/sketch-copy"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor produces per save.
const watchDebounce = 200 * time.Millisecond

// watchFile calls fn once immediately and again after every change of path,
// until ctx is cancelled. The parent directory is watched because editors
// usually replace files by renaming a temporary file over them.
func watchFile(ctx context.Context, path string, logger sketchcopy.Logger, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	fn()
	logger.Infof("Watching %s for changes (Ctrl+C to stop)...", path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-fire:
			fire = nil
			logger.Infof("%s changed, copying again...", path)
			fn()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("watcher: %v", err)
		}
	}
}
