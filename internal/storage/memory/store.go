// Package memory provides in-memory storage implementations. The stores are
// safe for concurrent use and intended for tests and single-process
// deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// SessionStore is an in-memory storage.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.SessionState
	clock    func() time.Time
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SessionState),
		clock:    time.Now,
	}
}

// EnsureSession returns existing state or lazily creates a zeroed one.
func (s *SessionStore) EnsureSession(ctx context.Context, sessionID string) (domain.SessionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(sessionID)
}

// GetSessionState returns current state, creating it if absent.
func (s *SessionStore) GetSessionState(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.EnsureSession(ctx, sessionID)
}

// SetCharacter replaces the latest character snapshot.
func (s *SessionStore) SetCharacter(ctx context.Context, sessionID string, sheet domain.CharacterSheet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.ensureLocked(sessionID)
	if err != nil {
		return err
	}
	state.Character = &sheet
	state.UpdatedAt = s.clock().UTC()
	s.sessions[state.SessionID] = state
	return nil
}

// SetLocation replaces the latest location summary.
func (s *SessionStore) SetLocation(ctx context.Context, sessionID string, location domain.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.ensureLocked(sessionID)
	if err != nil {
		return err
	}
	state.Location = &location
	state.UpdatedAt = s.clock().UTC()
	s.sessions[state.SessionID] = state
	return nil
}

// AddTurn appends a turn and increments the turn sequence. Appends whose
// stamped sequence disagrees with the post-increment count are rejected with
// storage.ErrSequenceConflict.
func (s *SessionStore) AddTurn(ctx context.Context, sessionID string, turn domain.Turn) (domain.SessionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.ensureLocked(sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if turn.TurnSequence != state.TurnSequence+1 {
		return domain.SessionState{}, storage.ErrSequenceConflict
	}
	state.Turns = append(state.Turns, turn)
	state.TurnSequence++
	state.UpdatedAt = s.clock().UTC()
	s.sessions[state.SessionID] = state
	return state.Clone(), nil
}

func (s *SessionStore) ensureLocked(sessionID string) (domain.SessionState, error) {
	if state, ok := s.sessions[sessionID]; ok {
		return state.Clone(), nil
	}
	state, err := domain.NewSessionState(sessionID, s.clock)
	if err != nil {
		return domain.SessionState{}, err
	}
	s.sessions[state.SessionID] = state
	return state.Clone(), nil
}
