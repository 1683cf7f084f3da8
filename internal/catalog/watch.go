package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/davidbz/relay/internal/observability"
)

// Watch reloads the catalog at path whenever it changes and hands every
// valid result to onChange. Bursts of events within debounce collapse into
// one reload. Invalid files are logged and the previous catalog stays in
// effect. Watching stops when ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context, *Catalog)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}

	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}

	go watchLoop(ctx, watcher, abs, debounce, onChange)
	return nil
}

func watchLoop(
	ctx context.Context,
	watcher *fsnotify.Watcher,
	path string,
	debounce time.Duration,
	onChange func(context.Context, *Catalog),
) {
	defer watcher.Close()

	logger := observability.FromContext(ctx)
	logger.Info("watching provider catalog", observability.String("path", path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cat, err := Load(path)
			if err != nil {
				logger.Warn("catalog reload rejected", observability.Error(err))
				continue
			}
			logger.Info("provider catalog reloaded", observability.Int("providers", len(cat.Providers)))
			onChange(ctx, cat)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("catalog watcher error", observability.Error(err))
		}
	}
}
