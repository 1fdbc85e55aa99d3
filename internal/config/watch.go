package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/activity-monitor/internal/logger"
)

// Watch reloads the settings file whenever it is written, created or renamed
// into place and delivers the validated result on the returned channel.
// The directory is watched so editors that replace the file are covered.
// The channel is closed when ctx is done.
func Watch(ctx context.Context, path, envFile string) (<-chan *Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err = watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()

		return nil, fmt.Errorf("watch settings directory: %w", err)
	}

	updates := make(chan *Config, 1)

	go func() {
		defer close(updates)

		defer func() {
			_ = watcher.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(evt.Name) != path {
					continue
				}

				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
					continue
				}

				cfg, loadErr := Load(path, envFile)
				if loadErr != nil {
					logger.WarnKV(ctx, "Ignoring invalid settings change", "path", path, "error", loadErr)
					continue
				}

				publish(updates, cfg)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				logger.WarnKV(ctx, "Settings watcher error", "error", watchErr)
			}
		}
	}()

	return updates, nil
}

// publish delivers cfg, replacing a pending update that was not consumed yet.
func publish(updates chan *Config, cfg *Config) {
	for {
		select {
		case updates <- cfg:
			return
		default:
		}

		select {
		case <-updates:
		default:
		}
	}
}
