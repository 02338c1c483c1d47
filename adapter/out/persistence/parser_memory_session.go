package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"parser_server/core/domain"
	"parser_server/core/port/out"

	"github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMaxSessions   = 10000
	maxOAuthStateTTL     = time.Hour
	defaultMaxOAuthState = 10000
)

type memorySession struct {
	data []byte
	seq  int64
}

type memoryState struct {
	sessionID string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in a bounded, expiring LRU. Sessions are
// stored encoded so callers never share state with the store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions *expirable.LRU[string, *memorySession]
	states   *expirable.LRU[string, memoryState]
}

func NewMemorySessionStore(ttl time.Duration, maxSessions int) *MemorySessionStore {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &MemorySessionStore{
		sessions: expirable.NewLRU[string, *memorySession](maxSessions, nil, ttl),
		states:   expirable.NewLRU[string, memoryState](defaultMaxOAuthState, nil, maxOAuthStateTTL),
	}
}

var _ out.SessionStore = (*MemorySessionStore)(nil)

func (s *MemorySessionStore) Create(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id cannot be empty")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Add(session.ID, &memorySession{data: data})
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *MemorySessionStore) Update(_ context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(id, fn)
}

func (s *MemorySessionStore) UpdateIfLatest(_ context.Context, id string, seq int64, fn func(*domain.Session) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions.Peek(id)
	if !ok {
		return false, out.ErrSessionNotFound
	}
	if entry.seq != seq {
		return false, nil
	}
	if _, err := s.update(id, fn); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemorySessionStore) update(id string, fn func(*domain.Session) error) (*domain.Session, error) {
	session, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	entry, ok := s.sessions.Peek(id)
	if !ok {
		return nil, out.ErrSessionNotFound
	}
	entry.data = data
	return session, nil
}

func (s *MemorySessionStore) NextSequence(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions.Peek(id)
	if !ok {
		return 0, out.ErrSessionNotFound
	}
	entry.seq++
	return entry.seq, nil
}

func (s *MemorySessionStore) SaveOAuthState(_ context.Context, state, sessionID string, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if sessionID == "" {
		return errors.New("session id cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states.Add(state, memoryState{sessionID: sessionID, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (s *MemorySessionStore) ConsumeOAuthState(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states.Peek(state)
	if !ok {
		return "", out.ErrStateNotFound
	}
	s.states.Remove(state)
	if time.Now().After(st.expiresAt) {
		return "", out.ErrStateNotFound
	}
	return st.sessionID, nil
}

// Len returns the number of live sessions.
func (s *MemorySessionStore) Len() int {
	return s.sessions.Len()
}

func (s *MemorySessionStore) load(id string) (*domain.Session, error) {
	entry, ok := s.sessions.Get(id)
	if !ok {
		return nil, out.ErrSessionNotFound
	}
	var session domain.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		s.sessions.Remove(id)
		return nil, out.ErrSessionNotFound
	}
	return &session, nil
}
