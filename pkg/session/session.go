// Package session tracks interactive pedigree views opened through the API.
//
// A Session pairs one pipeline engine with the owner it was opened for. Each
// session carries its own mutex: an engine is single-threaded, so handlers
// lock the session for the duration of a request. Sessions expire after a
// period of inactivity.
//
// # Usage
//
//	reg := session.NewRegistry[record.Attributes](session.DefaultTTL)
//	sess := session.New("alice", engine)
//	reg.Set(sess)
//
//	sess, err := reg.Get(id)
//	if err != nil {
//	    return err // ErrNotFound or ErrExpired
//	}
//	sess.Lock()
//	defer sess.Unlock()
//	scene := sess.Engine.Scene()
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pedigree/pkg/pipeline"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has been idle longer than its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default idle timeout.
const DefaultTTL = 30 * time.Minute

// Session is one open pedigree view.
type Session[P any] struct {
	ID        string
	Owner     string
	Engine    *pipeline.Engine[P]
	CreatedAt time.Time

	mu       sync.Mutex
	lastUsed atomic.Int64 // unix nanoseconds
}

// New creates a session with a random UUID.
func New[P any](owner string, engine *pipeline.Engine[P]) *Session[P] {
	now := time.Now()
	s := &Session[P]{
		ID:        uuid.NewString(),
		Owner:     owner,
		Engine:    engine,
		CreatedAt: now,
	}
	s.touch(now)
	return s
}

// Lock acquires exclusive use of the session's engine.
func (s *Session[P]) Lock() { s.mu.Lock() }

// Unlock releases the session and records the access time.
func (s *Session[P]) Unlock() {
	s.touch(time.Now())
	s.mu.Unlock()
}

// IdleSince returns the time of the last completed request.
func (s *Session[P]) IdleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session[P]) touch(t time.Time) { s.lastUsed.Store(t.UnixNano()) }

// IsExpired reports whether the session has been idle longer than ttl.
// A zero ttl never expires.
func (s *Session[P]) IsExpired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(s.IdleSince()) > ttl
}

// ValidID reports whether id has the session id format.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
