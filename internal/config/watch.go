package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "rangecal/internal/log"
)

var logger = appLog.Named("config")

// watchDebounce coalesces the burst of events editors and Save produce
// (create temp, write, chmod, rename) into a single reload.
const watchDebounce = 200 * time.Millisecond

// Watch reloads the config at path whenever it changes and hands the fresh
// value to onChange. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that atomic
// replacements (rename over the old file) are seen. A config that fails to
// load or validate is logged and skipped; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("watching config", "path", abs)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			cfg, err := Load(abs)
			if err != nil {
				logger.Error("config reload failed", err, "path", abs)
				continue
			}
			if err := onChange(cfg); err != nil {
				logger.Error("applying reloaded config failed", err, "path", abs)
				continue
			}
			logger.Info("config reloaded", "path", abs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", err)
		}
	}
}
