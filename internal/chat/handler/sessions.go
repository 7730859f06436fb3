package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"fullhouse_client/internal/chat"
	"fullhouse_client/platform/logger"

	"github.com/google/uuid"
)

var ErrTooManySessions = errors.New("chat: too many open sessions")

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 10000
)

// CollectorFactory builds a collector for a new session.
type CollectorFactory interface {
	New(sessionID, contactKey string) *chat.Collector
}

type sessionEntry struct {
	collector *chat.Collector
	lastSeen  time.Time
}

// SessionStore keeps live collectors in memory, keyed by a random id.
// Sessions idle for longer than the TTL are closed by Sweep.
type SessionStore struct {
	factory CollectorFactory
	ttl     time.Duration
	max     int
	log     *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionStore(factory CollectorFactory, ttl time.Duration, maxSessions int, log *logger.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionStore{
		factory:  factory,
		ttl:      ttl,
		max:      maxSessions,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *SessionStore) Create(contactKey string) (*chat.Collector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.max {
		return nil, ErrTooManySessions
	}
	id := uuid.NewString()
	c := s.factory.New(id, contactKey)
	s.sessions[id] = &sessionEntry{collector: c, lastSeen: s.now()}
	return c, nil
}

// Get returns the session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*chat.Collector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.collector, true
}

// Delete closes and forgets the session.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		e.collector.Close()
	}
	return ok
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle past the TTL and returns how many it removed.
// Sessions with a call in flight are kept.
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	var expired []*chat.Collector

	s.mu.Lock()
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) && !e.collector.Saving() {
			expired = append(expired, e.collector)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		s.log.Info("chat sessions expired", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done, then closes all sessions.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *SessionStore) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()
	for _, e := range all {
		e.collector.Close()
	}
}
