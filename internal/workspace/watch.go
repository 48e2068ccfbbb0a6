package workspace

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads sessions whose backing files change on disk, using OS-level
// notifications. A write or create event triggers a full reload of that one
// session through the classifier; this is not tailing — no offsets are kept
// and the whole file is re-read every time. Remove and rename events leave
// the session's records as they were.
//
// Sessions open when Watch starts are watched immediately; sessions opened
// later are picked up through the workspace's change events. Blocks until
// the context is cancelled.
func (w *Workspace) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	watched := make(map[string]bool)
	add := func(path string) {
		if watched[path] {
			return
		}
		if err := fsw.Add(path); err != nil {
			log.Printf("warning: cannot watch %s: %v", path, err)
			return
		}
		watched[path] = true
	}

	for _, sess := range w.List() {
		add(sess.Path())
	}

	changes := w.Subscribe()
	defer w.Unsubscribe(changes)

	for {
		select {
		case <-ctx.Done():
			return nil

		case id, ok := <-changes:
			if !ok {
				return nil
			}
			// A change event for an unknown id is a closed session; its
			// path stays registered with fsnotify but reloadPath ignores it.
			if sess, open := w.Get(id); open {
				add(sess.Path())
			}

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reloadPath(ctx, ev.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// reloadPath reloads the session opened for path, if any. A failed reload is
// logged and the session keeps its previous records.
func (w *Workspace) reloadPath(ctx context.Context, path string) {
	w.mu.RLock()
	sess := w.lookupPathLocked(path)
	w.mu.RUnlock()
	if sess == nil {
		return
	}
	if err := w.Reload(ctx, sess.ID()); err != nil {
		log.Printf("reload %s failed: %v", path, err)
	}
}
