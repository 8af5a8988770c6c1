package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceDelay is how long a file must stay quiet before it is reloaded.
const DebounceDelay = 200 * time.Millisecond

// Watch reloads path whenever it changes and delivers every config that
// loads and validates. Broken edits are logged and skipped. The parent
// directory is watched so editors that replace the file are handled too.
//
// The returned channel holds only the newest config; a slow reader misses
// intermediate versions. It is closed once ctx is done and the watcher has
// shut down.
func Watch(ctx context.Context, path string, log *zap.Logger) (<-chan Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	out := make(chan Config, 1)
	go watchLoop(ctx, w, abs, log, out)
	return out, nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, log *zap.Logger, out chan Config) {
	defer close(out)
	defer w.Close()

	timer := time.NewTimer(DebounceDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("config changed", zap.String("path", path), zap.Stringer("op", ev.Op))
			timer.Reset(DebounceDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher", zap.Error(err))

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				log.Warn("config reload rejected", zap.Error(err))
				continue
			}
			// Keep only the newest config.
			select {
			case <-out:
			default:
			}
			out <- cfg
			log.Info("config reloaded", zap.String("path", path))
		}
	}
}
