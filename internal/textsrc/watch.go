package textsrc

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay lets an editor finish writing before the file is read.
const settleDelay = 150 * time.Millisecond

// Reload is a new version of a watched file.
type Reload struct {
	Text string
	Err  error
}

// Watch reports a Reload each time the file at path is written or replaced.
// The parent directory is watched so editors that save by rename are seen.
// The channel is closed when ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan Reload, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		if cerr := watcher.Close(); cerr != nil {
			logger.Warn("failed to close watcher", "error", cerr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan Reload, 1)
	go func() {
		defer close(out)
		defer func() {
			if cerr := watcher.Close(); cerr != nil {
				logger.Warn("failed to close watcher", "error", cerr)
			}
		}()

		timer := time.NewTimer(settleDelay)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				logger.Debug("text file changed", "path", abs, "op", event.Op.String())
				if pending && !timer.Stop() {
					<-timer.C
				}
				timer.Reset(settleDelay)
				pending = true
			case <-timer.C:
				pending = false
				text, err := LoadFile(abs)
				select {
				case out <- Reload{Text: text, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", "path", abs, "error", err)
			}
		}
	}()
	return out, nil
}
