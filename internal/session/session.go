// Package session holds per-visitor sighting state in memory.
package session

import (
	"sync"

	"github.com/couchcryptid/bugwatch/internal/domain"
)

// Session owns one visitor's sighting collection, newest first.
type Session struct {
	id string

	mu        sync.RWMutex
	sightings []domain.Sighting
}

// New creates a session holding a copy of the given sightings.
func New(id string, seed []domain.Sighting) *Session {
	s := &Session{id: id, sightings: make([]domain.Sighting, len(seed))}
	copy(s.sightings, seed)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Add puts a sighting at the front of the collection.
func (s *Session) Add(sighting domain.Sighting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sightings = append([]domain.Sighting{sighting}, s.sightings...)
}

// Sightings returns a snapshot of the collection, newest first.
func (s *Session) Sightings() []domain.Sighting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sighting, len(s.sightings))
	copy(out, s.sightings)
	return out
}

// Len reports the number of sightings.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sightings)
}

// Distribution ranks the session's sightings by location.
func (s *Session) Distribution() domain.Distribution {
	return domain.Summarize(s.Sightings())
}
