package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch re-runs RestoreSession whenever the token file at path is written, replaced
// or removed, so a login or logout in another process is picked up. It blocks until
// ctx is done.
func Watch(ctx context.Context, path string, m *Manager) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create token watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the file may not exist yet and Save replaces it by rename.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.WithField("op", event.Op.String()).Debug("Token file changed")
			if err := m.RestoreSession(ctx); err != nil {
				log.WithError(err).Debug("Session not restored after token change")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Token watcher error")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
