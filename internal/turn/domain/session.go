package domain

import (
	"strings"
	"time"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
)

// ErrEmptySessionID indicates a missing session ID.
var ErrEmptySessionID = apperrors.New(apperrors.CodeTurnEmptySessionID, "session id is required")

// CharacterSheet is the latest known character snapshot for a session.
// The core treats sheet contents as opaque beyond the fields the scene
// frame reads.
type CharacterSheet struct {
	CharacterID string
	Name        string
	Concept     string
	Attributes  map[string]int
	Skills      map[string]int
	Conditions  []string
	UpdatedAt   time.Time
}

// Location is the latest known location summary for a session.
type Location struct {
	LocationID string
	Name       string
	Summary    string
	Tags       []string
	UpdatedAt  time.Time
}

// SessionState is the per-session mutable state owned by the session store.
//
// Invariant: TurnSequence equals len(Turns) after every successful append.
// The store rejects appends that would violate it.
type SessionState struct {
	SessionID    string
	TurnSequence int
	Character    *CharacterSheet
	Location     *Location
	Turns        []Turn
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSessionState creates a zeroed session state for lazy creation.
func NewSessionState(sessionID string, now func() time.Time) (SessionState, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return SessionState{}, ErrEmptySessionID
	}
	if now == nil {
		now = time.Now
	}
	createdAt := now().UTC()
	return SessionState{
		SessionID: sessionID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// Clone returns a deep copy of the session state. Pipeline runs receive a
// snapshot so an in-flight turn never observes concurrent store writes.
func (s SessionState) Clone() SessionState {
	out := s
	if s.Character != nil {
		sheet := *s.Character
		sheet.Attributes = cloneIntMap(s.Character.Attributes)
		sheet.Skills = cloneIntMap(s.Character.Skills)
		sheet.Conditions = append([]string(nil), s.Character.Conditions...)
		out.Character = &sheet
	}
	if s.Location != nil {
		loc := *s.Location
		loc.Tags = append([]string(nil), s.Location.Tags...)
		out.Location = &loc
	}
	out.Turns = append([]Turn(nil), s.Turns...)
	return out
}

func cloneIntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
