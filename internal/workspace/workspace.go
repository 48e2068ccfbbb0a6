// Package workspace manages the set of open sessions, one per viewed file.
// It owns session lifecycles the way a tab bar would: opening a file creates
// a session, reopening the same path reloads it in place, closing a tab
// destroys it. Sessions never share records.
package workspace

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/atikulmunna/loupe/internal/loader"
	"github.com/atikulmunna/loupe/internal/parser"
	"github.com/atikulmunna/loupe/internal/session"
)

const changeBuffer = 64

// Workspace is the explicit session registry handed to UI collaborators.
type Workspace struct {
	classifier *parser.Classifier

	mu        sync.RWMutex
	byID      map[uuid.UUID]*session.Session
	byPath    map[string]uuid.UUID
	listeners []chan uuid.UUID
	dropped   int64
}

// New creates an empty workspace sharing one classifier across sessions.
func New() *Workspace {
	return &Workspace{
		classifier: parser.NewClassifier(),
		byID:       make(map[uuid.UUID]*session.Session),
		byPath:     make(map[string]uuid.UUID),
	}
}

// Open loads path into a session and returns its handle. Opening an
// already-open path reloads that session in place: records are rebuilt from
// scratch while filter and highlight state stays put. A failed load never
// registers a new session and never disturbs an existing one.
func (w *Workspace) Open(ctx context.Context, path string) (*session.Session, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w.mu.RLock()
	sess := w.lookupPathLocked(abs)
	w.mu.RUnlock()

	fresh := sess == nil
	if fresh {
		sess = session.New(abs)
	}

	if err := loader.Load(ctx, sess, w.classifier, abs); err != nil {
		return nil, err
	}

	if fresh {
		w.mu.Lock()
		// Another open of the same path may have registered while this one
		// was loading; the first registration wins and the loser's session
		// is discarded, keeping one session per path.
		if winner := w.lookupPathLocked(abs); winner != nil {
			w.mu.Unlock()
			sess = winner
		} else {
			w.byID[sess.ID()] = sess
			w.byPath[abs] = sess.ID()
			w.mu.Unlock()
		}
	}

	w.Notify(sess.ID())
	return sess, nil
}

// Reload re-reads a session's file from disk, fully replacing its records.
func (w *Workspace) Reload(ctx context.Context, id uuid.UUID) error {
	sess, ok := w.Get(id)
	if !ok {
		return nil
	}
	if err := loader.Load(ctx, sess, w.classifier, sess.Path()); err != nil {
		return err
	}
	w.Notify(id)
	return nil
}

// Get returns the session for a handle.
func (w *Workspace) Get(id uuid.UUID) (*session.Session, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	sess, ok := w.byID[id]
	return sess, ok
}

// List returns all open sessions ordered by path.
func (w *Workspace) List() []*session.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*session.Session, 0, len(w.byID))
	for _, sess := range w.byID {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

// Close destroys a session. Its records and filter state are gone for good.
// Listeners are notified so consumers attached to the session can detect it
// is gone and shut down.
func (w *Workspace) Close(id uuid.UUID) bool {
	w.mu.Lock()
	sess, ok := w.byID[id]
	if ok {
		delete(w.byID, id)
		delete(w.byPath, sess.Path())
	}
	w.mu.Unlock()
	if !ok {
		return false
	}
	w.Notify(id)
	return true
}

// Subscribe returns a channel receiving the id of every session whose
// records or filter state changed. Consumers that fall behind lose events
// rather than blocking mutators.
func (w *Workspace) Subscribe() <-chan uuid.UUID {
	ch := make(chan uuid.UUID, changeBuffer)
	w.mu.Lock()
	w.listeners = append(w.listeners, ch)
	w.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener registered with Subscribe and closes it.
func (w *Workspace) Unsubscribe(ch <-chan uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, l := range w.listeners {
		if l == ch {
			w.listeners = append(w.listeners[:i], w.listeners[i+1:]...)
			close(l)
			return
		}
	}
}

// Notify tells listeners a session changed. Mutating collaborators call it
// after filter or highlight updates so views can be refreshed. Safe to call
// from multiple goroutines; the drop counter is atomic because only a read
// lock is held here.
func (w *Workspace) Notify(id uuid.UUID) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, ch := range w.listeners {
		select {
		case ch <- id:
		default:
			n := atomic.AddInt64(&w.dropped, 1)
			log.Printf("workspace: dropped change event for slow listener (total dropped: %d)", n)
		}
	}
}

// Dropped returns the total number of change events dropped because a
// listener's buffer was full.
func (w *Workspace) Dropped() int64 {
	return atomic.LoadInt64(&w.dropped)
}

func (w *Workspace) lookupPathLocked(abs string) *session.Session {
	id, ok := w.byPath[abs]
	if !ok {
		return nil
	}
	return w.byID[id]
}
