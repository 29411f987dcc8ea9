package session

import (
	"sync"
	"time"
)

// Registry is an in-memory session table.
type Registry[P any] struct {
	mu       sync.RWMutex
	sessions map[string]*Session[P]
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity. A zero ttl keeps sessions until deleted.
func NewRegistry[P any](ttl time.Duration) *Registry[P] {
	return &Registry[P]{
		sessions: make(map[string]*Session[P]),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the session with the given id. An expired session is reported
// as ErrExpired and stays in the table until Cleanup hands it back for
// persisting.
func (r *Registry[P]) Get(id string) (*Session[P], error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.IsExpired(r.ttl, r.now()) {
		return nil, ErrExpired
	}
	return sess, nil
}

// Set stores a session.
func (r *Registry[P]) Set(sess *Session[P]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

// Delete removes a session and returns it, or nil if it did not exist.
func (r *Registry[P]) Delete(id string) *Session[P] {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := r.sessions[id]
	delete(r.sessions, id)
	return sess
}

// Len returns the number of sessions, expired ones included.
func (r *Registry[P]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Cleanup removes expired sessions and returns them so callers can persist
// their state.
func (r *Registry[P]) Cleanup() []*Session[P] {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*Session[P]
	for id, sess := range r.sessions {
		if sess.IsExpired(r.ttl, now) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	return expired
}

// Drain removes and returns every session.
func (r *Registry[P]) Drain() []*Session[P] {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*Session[P], 0, len(r.sessions))
	for id, sess := range r.sessions {
		all = append(all, sess)
		delete(r.sessions, id)
	}
	return all
}
