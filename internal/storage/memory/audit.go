package memory

import (
	"context"
	"sync"

	"github.com/sablewood/chronicle/internal/storage"
)

// AuditEventStore is an in-memory storage.AuditEventStore.
type AuditEventStore struct {
	mu     sync.Mutex
	events []storage.AuditEvent
}

// NewAuditEventStore creates an empty in-memory audit store.
func NewAuditEventStore() *AuditEventStore {
	return &AuditEventStore{}
}

// AppendAuditEvent records one audit event.
func (s *AuditEventStore) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

// ListAuditEvents returns newest-first events for a session.
func (s *AuditEventStore) ListAuditEvents(ctx context.Context, sessionID string, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.AuditEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].SessionID != sessionID {
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
