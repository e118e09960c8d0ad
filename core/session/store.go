package session

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lakehouse-cost/internal/config"
	"lakehouse-cost/internal/errors"
	"lakehouse-cost/internal/logging"
	"lakehouse-cost/internal/metrics"
)

// Store holds live sessions keyed by id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog  Catalog
	defaults config.WorkloadConfig
	max      int
}

// NewStore creates a store. maxSessions of 0 means unbounded.
func NewStore(cat Catalog, defaults config.WorkloadConfig, maxSessions int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		catalog:  cat,
		defaults: defaults,
		max:      maxSessions,
	}
}

// Create allocates a new session populated with defaults
func (s *Store) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, errors.Capacityf("session limit of %d reached", s.max)
	}

	id := uuid.NewString()
	sess := New(id, s.catalog, s.defaults)
	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	logging.Named("session").Info("session created", logging.Session(id), zap.Int("active", len(s.sessions)))
	return sess, nil
}

// Get returns a session by id
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFound("session", id)
	}
	return sess, nil
}

// Delete removes a session
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errors.NotFound("session", id)
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	logging.Named("session").Info("session deleted", logging.Session(id))
	return nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IDs returns live session ids in sorted order
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
