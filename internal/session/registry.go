package session

import (
	"sort"
	"sync"
	"time"
)

// registry is the mutex-guarded store behind the local session mirror.
// Every method takes the lock for the shortest possible span; nothing
// here performs I/O, so callers never hold the lock across a network
// call.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*Session)}
}

// put installs a new mirror, replacing any previous entry with the
// same identifier.
func (r *registry) put(s *Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return len(r.sessions)
}

// get returns a deep copy so callers can read the transcript without
// holding the lock.
func (r *registry) get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.Clone(), true
}

// recordExchange appends messages and bumps the activity timestamp,
// but only when the mirror still exists. A sweep racing an in-flight
// message can remove the mirror first; the exchange is then dropped
// silently, which is the accepted outcome.
func (r *registry) recordExchange(id string, at time.Time, msgs ...Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Messages = append(s.Messages, msgs...)
	s.LastActivity = at
	return true
}

// recordNote appends a message without touching the activity
// timestamp. Used for local error notes, which do not count as
// successful use for expiry purposes.
func (r *registry) recordNote(id string, msg Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Messages = append(s.Messages, msg)
	return true
}

// remove deletes the mirror and reports whether it was tracked along
// with the remaining count.
func (r *registry) remove(id string) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok, len(r.sessions)
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// staleIDs snapshots the identifiers of sessions whose last activity
// predates the cutoff. Capturing under a read lock and acting on the
// snapshot afterwards keeps the sweep from blocking live traffic.
func (r *registry) staleIDs(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []string
	for id, s := range r.sessions {
		if s.LastActivity.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}

// list returns deep copies of every mirror, most recently active
// first.
func (r *registry) list() []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}
