package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"heropick/internal/capture"
	"heropick/internal/vision"
)

// watchCaptures re-runs recognition whenever images in the variant directories
// change, once the directory has been quiet for the configured debounce.
// Changes written by our own pipeline runs are ignored.
func (a *App) watchCaptures(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, v := range capture.DefaultLayout().Variants {
		dir := filepath.Join(a.cfg.Paths.CaptureDir, v.ID)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	debounce := a.cfg.GetDebounce()
	fmt.Printf("[Watch] Watching %s (debounce %v)\n", a.cfg.Paths.CaptureDir, debounce)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var lastEvent time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !vision.IsImageFile(event.Name) || !relevant(event.Op) {
				continue
			}
			if a.busy.Load() {
				continue
			}
			lastEvent = time.Now()
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("[WARN] File watcher error: %v\n", err)

		case <-timer.C:
			if a.busy.Load() || a.lastRun.Load() >= lastEvent.UnixNano() {
				continue
			}
			fmt.Println("[Watch] Captures changed, recognizing...")
			if _, err := a.recognizeAndScore(ctx); err != nil {
				fmt.Printf("[Watch] %v\n", err)
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
