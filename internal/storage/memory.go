package storage

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/textworld-advisor/internal/services"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one game session. Env is nil until the game adapter initializes it.
type Session struct {
	ID           string
	GameID       string
	CreatedAt    time.Time
	LastAccessed time.Time

	Env          services.GameEnv
	LastSnapshot *services.Snapshot
	CurrentStep  int
	History      []state.StepRecord
}

// Store is the session registry used by the game adapter and handlers.
type Store interface {
	Create(gameID string) (string, error)
	Get(id string) (Session, error)
	Update(id string, fn func(*Session)) error
	Delete(id string) bool
	SweepExpired() int
	Len() int
}

type MemoryStoreOptions struct {
	Timeout     time.Duration
	MaxSessions int

	// Now defaults to time.Now
	Now func() time.Time
	// OnEvict runs outside the lock for every session removed by Delete or a sweep
	OnEvict func(Session)
}

// MemoryStore keeps sessions in a map guarded by a single RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	timeout     time.Duration
	maxSessions int
	now         func() time.Time
	onEvict     func(Session)
	logger      *slog.Logger
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts MemoryStoreOptions, logger *slog.Logger) *MemoryStore {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		sessions:    make(map[string]*Session),
		timeout:     opts.Timeout,
		maxSessions: opts.MaxSessions,
		now:         now,
		onEvict:     opts.OnEvict,
		logger:      logger,
	}
}

// Create registers a new uninitialized session and returns its ID.
// Going over MaxSessions kicks off a background sweep; it never rejects.
func (s *MemoryStore) Create(gameID string) (string, error) {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.sessions[id] = &Session{
		ID:           id,
		GameID:       gameID,
		CreatedAt:    now,
		LastAccessed: now,
	}
	count := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info("Session created", "session_id", id, "game_id", gameID, "active_sessions", count)

	if s.maxSessions > 0 && count > s.maxSessions {
		go s.SweepExpired()
	}
	return id, nil
}

// Get refreshes LastAccessed and returns a copy of the session.
func (s *MemoryStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.LastAccessed = s.now()
	return copySession(sess), nil
}

// Update applies fn to the stored session under the write lock.
func (s *MemoryStore) Update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessed = s.now()
	fn(sess)
	sess.ID = id
	return nil
}

// Delete removes the session and reports whether it existed.
func (s *MemoryStore) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.logger.Info("Session deleted", "session_id", id)
	s.evict(*sess)
	return true
}

// SweepExpired removes sessions idle longer than the timeout and returns how many went.
func (s *MemoryStore) SweepExpired() int {
	now := s.now()

	s.mu.Lock()
	var expired []Session
	for id, sess := range s.sessions {
		if now.Sub(sess.LastAccessed) > s.timeout {
			expired = append(expired, *sess)
			delete(s.sessions, id)
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		s.evict(sess)
	}
	if len(expired) > 0 {
		s.logger.Info("Expired sessions removed", "count", len(expired), "active_sessions", remaining)
	}
	return len(expired)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) evict(sess Session) {
	if s.onEvict != nil {
		s.onEvict(sess)
	}
}

func copySession(sess *Session) Session {
	c := *sess
	c.History = slices.Clone(sess.History)
	return c
}
