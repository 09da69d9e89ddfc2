package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sablewood/chronicle/internal/turn/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrSequenceConflict indicates a turn append whose stamped sequence number
// does not equal the store's post-increment count. The write is rejected;
// callers own serialization and retry policy.
var ErrSequenceConflict = errors.New("turn sequence conflict")

// SessionStore owns per-session mutable state. No component bypasses it to
// mutate session state directly.
type SessionStore interface {
	// EnsureSession returns existing state or lazily creates a zeroed one.
	// It is idempotent.
	EnsureSession(ctx context.Context, sessionID string) (domain.SessionState, error)
	// GetSessionState returns current state, creating it if absent. Callers
	// that need a correctness-sensitive read should EnsureSession first.
	GetSessionState(ctx context.Context, sessionID string) (domain.SessionState, error)
	// SetCharacter replaces the latest character snapshot. Last write wins.
	SetCharacter(ctx context.Context, sessionID string, sheet domain.CharacterSheet) error
	// SetLocation replaces the latest location summary. Last write wins.
	SetLocation(ctx context.Context, sessionID string, location domain.Location) error
	// AddTurn appends a turn and increments the session's turn sequence.
	// Returns ErrSequenceConflict when the turn's stamped sequence does not
	// equal the post-increment count.
	AddTurn(ctx context.Context, sessionID string, turn domain.Turn) (domain.SessionState, error)
}

// AuditEvent is one operational audit record, keyed by session.
type AuditEvent struct {
	Timestamp    time.Time
	EventName    string
	Severity     string
	SessionID    string
	PlayerID     string
	TurnSequence int
	Node         string
	Ref          string
	Attributes   map[string]any
}

// AuditEventStore persists audit records for traceability and moderation
// review.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
	ListAuditEvents(ctx context.Context, sessionID string, limit int) ([]AuditEvent, error)
}
