package schedule

import (
	"sync"
	"time"

	"salonsked/internal/model"
)

// Session holds the entries loaded for one owner. Readers get the current
// slice, which is never modified after it is published; writers swap in a
// new slice produced by the reconciler.
//
// storeMu is held across a store round trip and the state change it leads
// to, so a window load never replaces entries confirmed while it listed.
type Session struct {
	storeMu sync.Mutex

	mu       sync.Mutex
	entries  []model.DayEntry
	from     time.Time
	to       time.Time
	loaded   bool
	inFlight map[string]struct{}
}

func newSession() *Session {
	return &Session{inFlight: make(map[string]struct{})}
}

// Snapshot returns the held entries.
func (s *Session) Snapshot() []model.DayEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// window returns the held entries when day lies inside the loaded window.
func (s *Session) window(day time.Time) ([]model.DayEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded || day.Before(s.from) || !day.Before(s.to) {
		return nil, false
	}
	return s.entries, true
}

// reset replaces the held entries with a freshly loaded window.
func (s *Session) reset(entries []model.DayEntry, from, to time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.from, s.to = from, to
	s.loaded = true
}

// apply swaps in fn(current) under the lock.
func (s *Session) apply(fn func([]model.DayEntry) []model.DayEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = fn(s.entries)
}

// begin marks key as in flight. It returns false when it already is.
func (s *Session) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Session) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// onDay filters entries to those starting on day.
func onDay(entries []model.DayEntry, day time.Time) []model.DayEntry {
	var out []model.DayEntry
	for i := range entries {
		if entries[i].OnDate(day) {
			out = append(out, entries[i])
		}
	}
	return out
}
