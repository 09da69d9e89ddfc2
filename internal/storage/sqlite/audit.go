package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sablewood/chronicle/internal/storage"
)

// AppendAuditEvent persists one audit record.
func (s *Store) AppendAuditEvent(ctx context.Context, evt storage.AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	evt.EventName = strings.TrimSpace(evt.EventName)
	evt.SessionID = strings.TrimSpace(evt.SessionID)
	if evt.EventName == "" {
		return fmt.Errorf("event name is required")
	}
	if evt.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = s.clock().UTC()
	}

	var attributesJSON []byte
	if len(evt.Attributes) > 0 {
		encoded, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("encode attributes: %w", err)
		}
		attributesJSON = encoded
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO audit_events (
	timestamp,
	event_name,
	severity,
	session_id,
	player_id,
	turn_sequence,
	node,
	ref,
	attributes_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		evt.Timestamp.UTC().UnixMilli(),
		evt.EventName,
		evt.Severity,
		evt.SessionID,
		evt.PlayerID,
		evt.TurnSequence,
		evt.Node,
		evt.Ref,
		string(attributesJSON),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns newest-first audit records for a session.
func (s *Store) ListAuditEvents(ctx context.Context, sessionID string, limit int) ([]storage.AuditEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT timestamp, event_name, severity, session_id, player_id, turn_sequence, node, ref, attributes_json
FROM audit_events
WHERE session_id = ?
ORDER BY id DESC
LIMIT ?
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []storage.AuditEvent
	for rows.Next() {
		var (
			evt            storage.AuditEvent
			timestampMs    int64
			attributesJSON string
		)
		if err := rows.Scan(
			&timestampMs,
			&evt.EventName,
			&evt.Severity,
			&evt.SessionID,
			&evt.PlayerID,
			&evt.TurnSequence,
			&evt.Node,
			&evt.Ref,
			&attributesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		evt.Timestamp = time.UnixMilli(timestampMs).UTC()
		if attributesJSON != "" {
			if err := json.Unmarshal([]byte(attributesJSON), &evt.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes: %w", err)
			}
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
