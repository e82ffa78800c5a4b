// Package store keeps chat sessions and their messages.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/speakgenie/internal/message"
)

// ErrNotFound is returned when the requested session does not exist.
var ErrNotFound = errors.New("session not found")

// Store persists sessions and messages.
//
// All implementations must be safe for concurrent use.
type Store interface {
	// CreateSession stores a new session, assigning its ID and CreatedAt.
	CreateSession(ctx context.Context, s message.Session) (message.Session, error)

	// Session returns the session with id, or [ErrNotFound].
	Session(ctx context.Context, id string) (message.Session, error)

	// Sessions returns all sessions, newest first.
	Sessions(ctx context.Context) ([]message.Session, error)

	// AddMessage appends m to its session, assigning ID and Timestamp.
	// Returns [ErrNotFound] if the session does not exist.
	AddMessage(ctx context.Context, m message.Message) (message.Message, error)

	// Messages returns a session's messages, oldest first.
	Messages(ctx context.Context, sessionID string) ([]message.Message, error)
}

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]message.Session
	messages map[string][]message.Message
	now      func() time.Time
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]message.Session),
		messages: make(map[string][]message.Message),
		now:      time.Now,
	}
}

// CreateSession implements [Store.CreateSession].
func (s *MemStore) CreateSession(_ context.Context, sess message.Session) (message.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.ID = uuid.NewString()
	sess.CreatedAt = s.now()
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Session implements [Store.Session].
func (s *MemStore) Session(_ context.Context, id string) (message.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return message.Session{}, ErrNotFound
	}
	return sess, nil
}

// Sessions implements [Store.Sessions].
func (s *MemStore) Sessions(_ context.Context) ([]message.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]message.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	slices.SortFunc(out, func(a, b message.Session) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// AddMessage implements [Store.AddMessage].
func (s *MemStore) AddMessage(_ context.Context, m message.Message) (message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[m.SessionID]; !ok {
		return message.Message{}, ErrNotFound
	}
	m.ID = uuid.NewString()
	m.Timestamp = s.now()
	s.messages[m.SessionID] = append(s.messages[m.SessionID], m)
	return m, nil
}

// Messages implements [Store.Messages]. Messages are kept in insertion
// order, which is also timestamp order.
func (s *MemStore) Messages(_ context.Context, sessionID string) ([]message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(s.messages[sessionID]), nil
}
