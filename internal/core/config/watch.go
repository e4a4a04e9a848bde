package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it is written and hands the new config to onChange.
// A reload that fails to parse or validate is logged and skipped. It runs until
// ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*AppConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	// The directory is watched so that a rename over path keeps being seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log := slog.Default().With("component", "config")
	log.Info("Watching config for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// Atomic saves land as Create or Rename on path, depending on the platform.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Error("Config reload failed, keeping previous config", "path", path, "error", err)
				continue
			}

			log.Info("Config reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("Config watcher error", "error", err)
		}
	}
}
