package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// EnsureSession returns existing state or lazily creates a zeroed one.
func (s *Store) EnsureSession(ctx context.Context, sessionID string) (domain.SessionState, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionState{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.SessionState{}, domain.ErrEmptySessionID
	}

	now := s.clock().UTC()
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (session_id, turn_sequence, created_at, updated_at)
VALUES (?, 0, ?, ?)
ON CONFLICT(session_id) DO NOTHING
`, sessionID, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("ensure session: %w", err)
	}
	return s.loadSession(ctx, sessionID)
}

// GetSessionState returns current state, creating it if absent.
func (s *Store) GetSessionState(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.EnsureSession(ctx, sessionID)
}

// SetCharacter replaces the latest character snapshot.
func (s *Store) SetCharacter(ctx context.Context, sessionID string, sheet domain.CharacterSheet) error {
	if _, err := s.EnsureSession(ctx, sessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("encode character: %w", err)
	}
	now := s.clock().UTC()
	_, err = s.sqlDB.ExecContext(ctx, `
UPDATE sessions SET character_json = ?, updated_at = ? WHERE session_id = ?
`, string(payload), now.UnixMilli(), strings.TrimSpace(sessionID))
	if err != nil {
		return fmt.Errorf("set character: %w", err)
	}
	return nil
}

// SetLocation replaces the latest location summary.
func (s *Store) SetLocation(ctx context.Context, sessionID string, location domain.Location) error {
	if _, err := s.EnsureSession(ctx, sessionID); err != nil {
		return err
	}
	payload, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	now := s.clock().UTC()
	_, err = s.sqlDB.ExecContext(ctx, `
UPDATE sessions SET location_json = ?, updated_at = ? WHERE session_id = ?
`, string(payload), now.UnixMilli(), strings.TrimSpace(sessionID))
	if err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	return nil
}

// AddTurn appends a turn and increments the turn sequence inside one
// transaction. Appends whose stamped sequence disagrees with the
// post-increment count are rejected with storage.ErrSequenceConflict.
func (s *Store) AddTurn(ctx context.Context, sessionID string, turn domain.Turn) (domain.SessionState, error) {
	if _, err := s.EnsureSession(ctx, sessionID); err != nil {
		return domain.SessionState{}, err
	}
	sessionID = strings.TrimSpace(sessionID)

	payload, err := json.Marshal(turn)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("encode turn: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("begin add turn: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	row := tx.QueryRowContext(ctx, `SELECT turn_sequence FROM sessions WHERE session_id = ?`, sessionID)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SessionState{}, storage.ErrNotFound
		}
		return domain.SessionState{}, fmt.Errorf("read turn sequence: %w", err)
	}
	if turn.TurnSequence != current+1 {
		return domain.SessionState{}, storage.ErrSequenceConflict
	}

	now := s.clock().UTC()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO turns (session_id, turn_sequence, payload_json, created_at)
VALUES (?, ?, ?, ?)
`, sessionID, turn.TurnSequence, string(payload), now.UnixMilli()); err != nil {
		return domain.SessionState{}, fmt.Errorf("insert turn: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE sessions SET turn_sequence = ?, updated_at = ? WHERE session_id = ?
`, turn.TurnSequence, now.UnixMilli(), sessionID); err != nil {
		return domain.SessionState{}, fmt.Errorf("advance turn sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.SessionState{}, fmt.Errorf("commit add turn: %w", err)
	}

	return s.loadSession(ctx, sessionID)
}

func (s *Store) loadSession(ctx context.Context, sessionID string) (domain.SessionState, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT turn_sequence, character_json, location_json, created_at, updated_at
FROM sessions WHERE session_id = ?
`, sessionID)

	var (
		turnSequence  int
		characterJSON sql.NullString
		locationJSON  sql.NullString
		createdAtMs   int64
		updatedAtMs   int64
	)
	if err := row.Scan(&turnSequence, &characterJSON, &locationJSON, &createdAtMs, &updatedAtMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SessionState{}, storage.ErrNotFound
		}
		return domain.SessionState{}, fmt.Errorf("load session: %w", err)
	}

	state := domain.SessionState{
		SessionID:    sessionID,
		TurnSequence: turnSequence,
		CreatedAt:    time.UnixMilli(createdAtMs).UTC(),
		UpdatedAt:    time.UnixMilli(updatedAtMs).UTC(),
	}
	if characterJSON.Valid && characterJSON.String != "" {
		var sheet domain.CharacterSheet
		if err := json.Unmarshal([]byte(characterJSON.String), &sheet); err != nil {
			return domain.SessionState{}, fmt.Errorf("decode character: %w", err)
		}
		state.Character = &sheet
	}
	if locationJSON.Valid && locationJSON.String != "" {
		var location domain.Location
		if err := json.Unmarshal([]byte(locationJSON.String), &location); err != nil {
			return domain.SessionState{}, fmt.Errorf("decode location: %w", err)
		}
		state.Location = &location
	}

	turns, err := s.loadTurns(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	state.Turns = turns
	return state, nil
}

func (s *Store) loadTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT payload_json FROM turns WHERE session_id = ? ORDER BY turn_sequence ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []domain.Turn
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		var turn domain.Turn
		if err := json.Unmarshal([]byte(payload), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}
