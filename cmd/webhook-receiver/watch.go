package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig hands a freshly parsed config to onChange every time the file at
// path changes, until ctx is cancelled. A file that fails to parse is logged and
// skipped.
//
// The parent directory is watched rather than the file: an atomic save renames
// a new inode over path, which would silently end a watch on the file itself.
func WatchConfig(ctx context.Context, path string, onChange func(*Config)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	log.Debugf("Watching config file '%s' for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("Config watcher error: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isConfigUpdate(event, path) {
				reloadConfig(path, onChange)
			}
		}
	}
}

// isConfigUpdate reports whether event left new content at path. Renames onto
// path arrive as Create; Remove and Rename of path leave nothing to read.
func isConfigUpdate(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func reloadConfig(path string, onChange func(*Config)) {
	config, err := ParseConfig(path)
	if err != nil {
		log.Errorf("Config reload failed, keeping previous config: %v", err)
		return
	}
	log.Infof("Config file '%s' reloaded", path)
	onChange(config)
}

// applyReload returns the callback used by WatchConfig for a server started with
// current. overlay re-applies settings pinned on the command line.
func applyReload(current *Config, overlay func(*Config)) func(*Config) {
	return func(next *Config) {
		overlay(next)
		if err := next.Validate(); err != nil {
			log.Errorf("Ignoring reloaded config: %v", err)
			return
		}
		SetLogLevel(next.LogLevel)
		if next.ListenPort != current.ListenPort || next.MetricsPort != current.MetricsPort {
			log.Warnf("Port change in config (listen_port %d, metrics_port %d) requires a restart; still serving on %d",
				next.ListenPort, next.MetricsPort, current.ListenPort)
		}
	}
}
