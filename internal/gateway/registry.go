package gateway

import (
	"sync"
	"time"
)

// SessionTTL is how long a terminal session stays resolvable. The TTL is
// set at connect time and refreshed only by an explicit reconnect, never by
// activity.
const SessionTTL = 1 * time.Hour

// Session is the registry's record of one terminal session. It carries
// identity and authorization continuity only: no process or transport is
// associated with it.
type Session struct {
	ServerID  uint
	CreatedAt time.Time
}

// Registry maps opaque session identifiers to sessions with a TTL. Expiry
// is enforced by the store at lookup time; there is no sweeper, and callers
// cannot distinguish "expired" from "never existed".
type Registry interface {
	Put(id string, s Session, ttl time.Duration)
	Get(id string) (Session, bool)
	Delete(id string)
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryRegistry is the in-process Registry implementation.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nowFn   func() time.Time // injectable clock for testing
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
		nowFn:   time.Now,
	}
}

func (r *MemoryRegistry) Put(id string, s Session, ttl time.Duration) {
	r.mu.Lock()
	r.entries[id] = memoryEntry{
		session:   s,
		expiresAt: r.nowFn().Add(ttl),
	}
	r.mu.Unlock()
}

func (r *MemoryRegistry) Get(id string) (Session, bool) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok || r.nowFn().After(entry.expiresAt) {
		return Session{}, false
	}
	return entry.session, true
}

func (r *MemoryRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}
