package rules

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached rule files when they change on disk, so edits
// made outside the process are picked up by the next check. It returns once
// the watcher is installed; watching stops when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				dt, ok := docTypeFromFile(ev.Name)
				if !ok {
					continue
				}
				s.Invalidate(dt)
				s.log.Debug("rule file changed", "doc_type", dt, "op", ev.Op.String())
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("rule watcher error", "error", err)
			}
		}
	}()
	return nil
}

func docTypeFromFile(name string) (DocType, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, "_rules.json") {
		return "", false
	}
	dt, err := ParseDocType(strings.TrimSuffix(base, "_rules.json"))
	if err != nil {
		return "", false
	}
	return dt, true
}
