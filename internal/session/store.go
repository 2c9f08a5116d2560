package session

import (
	"github.com/couchcryptid/bugwatch/internal/cache"
	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/google/uuid"
)

// Store keeps a bounded set of sessions. The least recently used session is
// dropped when capacity is reached, which is the server-side equivalent of a
// closed tab.
type Store struct {
	sessions *cache.LRU[string, *Session]
	seed     bool
	metrics  *observability.Metrics
}

// NewStore creates a store holding at most capacity sessions. When seed is
// true every new session starts with the demo sightings.
func NewStore(capacity int, seed bool, metrics *observability.Metrics) *Store {
	st := &Store{
		sessions: cache.NewLRU[string, *Session](capacity),
		seed:     seed,
		metrics:  metrics,
	}
	st.sessions.OnEvict(func(string, *Session) {
		st.metrics.SessionsActive.Dec()
	})
	return st
}

// Get returns an existing session.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return st.sessions.Get(id)
}

// Create starts a new session with a random ID.
func (st *Store) Create() *Session {
	var seed []domain.Sighting
	if st.seed {
		seed = domain.DemoSightings(domain.Now())
	}
	s := New(uuid.NewString(), seed)
	st.sessions.Put(s.ID(), s)
	st.metrics.SessionsActive.Inc()
	return s
}

// Resolve returns the session for id, creating one when id is unknown.
// The second result reports whether a new session was started.
func (st *Store) Resolve(id string) (*Session, bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Create(), true
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	return st.sessions.Len()
}
