package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/atikulmunna/loupe/internal/model"
)

// LevelAll disables level filtering.
const LevelAll = "ALL"

// Session owns the full record set of one opened log file together with its
// filter and highlight state, and the filtered view derived from them. Every
// state mutation recomputes the view in full before returning; the view is
// never patched incrementally, so reading it after any mutator always
// observes a consistent result.
//
// Sessions are independent: records are never shared between sessions, and
// all methods are safe for concurrent use through an internal mutex.
type Session struct {
	mu   sync.RWMutex
	id   uuid.UUID
	path string

	records       []model.LogRecord
	levelFilter   string
	searchText    string
	highlights    []string
	highlightOnly bool

	filtered []model.LogRecord
}

// New creates an empty session for the given file path with no filters
// active.
func New(path string) *Session {
	return &Session{
		id:          uuid.New(),
		path:        path,
		levelFilter: LevelAll,
	}
}

// ID returns the session's handle, stable for its whole lifetime.
func (s *Session) ID() uuid.UUID { return s.id }

// Path returns the file path this session was opened for.
func (s *Session) Path() string { return s.path }

// Append adds a classified record to the session, assigning the next
// sequence id. The filtered view is not recomputed here; ingestion calls
// ApplyFilters once after the whole load, per the load contract.
func (s *Session) Append(rec model.LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Seq = len(s.records) + 1
	s.records = append(s.records, rec)
}

// Replace swaps in a freshly loaded record set and recomputes the view.
// Filter and highlight state carries over, which is what a reload of the
// same file must preserve.
func (s *Session) Replace(records []model.LogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]model.LogRecord(nil), records...)
	s.applyLocked()
}

// Clear drops all records and the derived view. Filter and highlight state
// stays, ready for the reload that follows.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.applyLocked()
}

// Records returns a copy of the full record set in insertion order.
func (s *Session) Records() []model.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LogRecord(nil), s.records...)
}

// Filtered returns a copy of the current derived view.
func (s *Session) Filtered() []model.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.LogRecord(nil), s.filtered...)
}

// LevelFilter returns the active level filter ("ALL" when inactive).
func (s *Session) LevelFilter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelFilter
}

// SetLevelFilter sets the level filter and recomputes the view. An empty
// value is treated as "ALL".
func (s *Session) SetLevelFilter(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if level == "" {
		level = LevelAll
	}
	s.levelFilter = level
	s.applyLocked()
}

// SearchText returns the active substring filter.
func (s *Session) SearchText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchText
}

// SetSearchText sets the case-insensitive substring filter over source and
// message, and recomputes the view.
func (s *Session) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchText = text
	s.applyLocked()
}

// HighlightOnly reports whether the view is restricted to highlighted records.
func (s *Session) HighlightOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlightOnly
}

// SetHighlightOnly toggles the highlighted-only restriction and recomputes
// the view. With the toggle on and no keywords defined, the view is empty;
// resetting the toggle in that situation is the caller's job.
func (s *Session) SetHighlightOnly(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlightOnly = on
	s.applyLocked()
}

// Highlights returns a copy of the highlight keywords in insertion order.
// The position of a keyword is its color index.
func (s *Session) Highlights() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.highlights...)
}

// AddHighlight appends a keyword to the highlight list and recomputes the
// view. The word is trimmed first; empty strings and case-insensitive
// duplicates report false and change nothing. Appending keeps earlier
// keywords at their positions, so existing color assignments stay stable.
func (s *Session) AddHighlight(word string) bool {
	word = strings.TrimSpace(word)
	if word == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.highlights {
		if strings.EqualFold(w, word) {
			return false
		}
	}
	s.highlights = append(s.highlights, word)
	s.applyLocked()
	return true
}

// RemoveHighlight removes a keyword by case-insensitive match and recomputes
// the view. Removing the last keyword also switches highlightOnly off, so an
// emptied highlight set cannot silently blank the view.
func (s *Session) RemoveHighlight(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.highlights {
		if strings.EqualFold(w, word) {
			s.highlights = append(s.highlights[:i], s.highlights[i+1:]...)
			if len(s.highlights) == 0 {
				s.highlightOnly = false
			}
			s.applyLocked()
			return true
		}
	}
	return false
}

// ClearHighlights drops every keyword and recomputes the view. Unlike
// RemoveHighlight it leaves highlightOnly alone, so clearing with the toggle
// active yields an empty view until the caller resets the toggle.
func (s *Session) ClearHighlights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = nil
	s.applyLocked()
}

// ApplyFilters recomputes the derived view from the current state. Mutators
// already do this internally; the explicit call exists for ingestion to run
// once after a full load, and is idempotent: with unchanged inputs the
// resulting view is identical.
func (s *Session) ApplyFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked()
}

// applyLocked rebuilds the filtered view. Callers must hold the write lock.
func (s *Session) applyLocked() {
	view := make([]model.LogRecord, 0, len(s.records))
	for _, rec := range s.records {
		if s.matchLocked(rec) {
			view = append(view, rec)
		}
	}
	s.filtered = view
}

// matchLocked is the filter predicate: level match, search match, and the
// highlighted-only restriction, all of which must hold.
func (s *Session) matchLocked(rec model.LogRecord) bool {
	if s.levelFilter != LevelAll && rec.Level != s.levelFilter {
		return false
	}
	if s.searchText != "" &&
		!containsFold(rec.Message, s.searchText) &&
		!containsFold(rec.Source, s.searchText) {
		return false
	}
	if s.highlightOnly {
		if _, ok := HighlightIndex(rec, s.highlights); !ok {
			return false
		}
	}
	return true
}

// containsFold reports whether substr occurs in str, ignoring case.
func containsFold(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
