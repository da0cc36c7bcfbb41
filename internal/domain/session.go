package domain

import (
	"sync"
	"time"
)

// ConnState is the lifecycle state of a live connection.
type ConnState int

const (
	// ConnConnected: socket open, not yet associated with a user.
	ConnConnected ConnState = iota
	// ConnRegistered: associated with a user id.
	ConnRegistered
	// ConnClosed: terminal.
	ConnClosed
)

// ConnSession tracks the per-connection lifecycle state. A connection may
// re-register any number of times, possibly under a different user id; only
// the close transition is terminal.
type ConnSession struct {
	ID           string
	UserID       uint
	State        ConnState
	CreatedAt    time.Time
	LastActiveAt time.Time
	mu           sync.RWMutex
}

func NewConnSession(id string) *ConnSession {
	now := time.Now()
	return &ConnSession{
		ID:           id,
		State:        ConnConnected,
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// Register transitions to ConnRegistered under the given user id.
// Returns false if the connection is already closed.
func (s *ConnSession) Register(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State == ConnClosed {
		return false
	}
	s.UserID = userID
	s.State = ConnRegistered
	s.LastActiveAt = time.Now()
	return true
}

// Close transitions to the terminal ConnClosed state.
func (s *ConnSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = ConnClosed
}

// IsRegistered reports whether the connection is associated with a user.
func (s *ConnSession) IsRegistered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State == ConnRegistered
}

// GetUserID returns the registered user id, or zero if unregistered.
func (s *ConnSession) GetUserID() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.State != ConnRegistered {
		return 0
	}
	return s.UserID
}

// GetState returns the current lifecycle state.
func (s *ConnSession) GetState() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.State
}

// UpdateActivity records inbound traffic on the connection.
func (s *ConnSession) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
