package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chronicle.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestEnsureSessionRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	created, err := store.EnsureSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if created.SessionID != "session-1" || created.TurnSequence != 0 {
		t.Fatalf("unexpected created state: %+v", created)
	}

	again, err := store.EnsureSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if !again.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("ensure must be idempotent")
	}
}

func TestSetCharacterAndLocationPersist(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sheet := domain.CharacterSheet{
		CharacterID: "char-1",
		Name:        "Iris",
		Concept:     "dockside fixer",
		Attributes:  map[string]int{"focus": 2},
		Skills:      map[string]int{"investigation": 3},
		Conditions:  []string{"winded"},
		UpdatedAt:   time.Now().UTC(),
	}
	if err := store.SetCharacter(ctx, "session-1", sheet); err != nil {
		t.Fatalf("set character: %v", err)
	}
	location := domain.Location{
		LocationID: "loc-docks",
		Name:       "Saltmarket Docks",
		Summary:    "A fogbound harbor district.",
		Tags:       []string{"urban", "night"},
		UpdatedAt:  time.Now().UTC(),
	}
	if err := store.SetLocation(ctx, "session-1", location); err != nil {
		t.Fatalf("set location: %v", err)
	}

	state, err := store.GetSessionState(ctx, "session-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Character == nil || state.Character.Name != "Iris" {
		t.Fatalf("character not persisted: %+v", state.Character)
	}
	if state.Character.Skills["investigation"] != 3 {
		t.Fatalf("skills not persisted: %v", state.Character.Skills)
	}
	if state.Location == nil || state.Location.LocationID != "loc-docks" {
		t.Fatalf("location not persisted: %+v", state.Location)
	}
}

func TestAddTurnSequenceAndPayload(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	turn := domain.Turn{
		TurnSequence: 1,
		PlayerMessage: domain.Message{
			Role:     domain.RolePlayer,
			AuthorID: "player-1",
			Content:  "I search the docks.",
		},
		GMMessage: domain.Message{
			Role:    domain.RoleGM,
			Content: "Fog rolls over the harbor.",
		},
		PlayerIntent: domain.Intent{IntentSummary: "search the docks"},
		SkillCheckResult: &domain.SkillCheckResult{
			Plan: domain.SkillCheckPlan{
				Skill:      domain.SkillInvestigation,
				Attribute:  domain.AttributeFocus,
				Difficulty: 12,
			},
			Rolls:       []int{6, 7},
			Modifier:    3,
			Total:       16,
			OutcomeTier: domain.OutcomeTierAdvance,
			Seed:        42,
			ResolvedAt:  time.Now().UTC(),
		},
		GMSummary: "Searched the docks.",
		CreatedAt: time.Now().UTC(),
	}

	state, err := store.AddTurn(ctx, "session-1", turn)
	if err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if state.TurnSequence != 1 || len(state.Turns) != 1 {
		t.Fatalf("unexpected state: seq=%d turns=%d", state.TurnSequence, len(state.Turns))
	}

	loaded := state.Turns[0]
	if loaded.PlayerMessage.Content != "I search the docks." {
		t.Fatalf("player message not preserved: %q", loaded.PlayerMessage.Content)
	}
	if loaded.SkillCheckResult == nil || loaded.SkillCheckResult.Total != 16 {
		t.Fatalf("check result not preserved: %+v", loaded.SkillCheckResult)
	}
	if loaded.SkillCheckResult.OutcomeTier != domain.OutcomeTierAdvance {
		t.Fatalf("outcome tier not preserved: %q", loaded.SkillCheckResult.OutcomeTier)
	}
}

func TestAddTurnRejectsSequenceConflict(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := store.AddTurn(ctx, "session-1", domain.Turn{TurnSequence: 1}); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if _, err := store.AddTurn(ctx, "session-1", domain.Turn{TurnSequence: 3}); !errors.Is(err, storage.ErrSequenceConflict) {
		t.Fatalf("expected sequence conflict, got %v", err)
	}

	state, err := store.GetSessionState(ctx, "session-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.TurnSequence != 1 || len(state.Turns) != 1 {
		t.Fatalf("rejected append changed state: seq=%d turns=%d", state.TurnSequence, len(state.Turns))
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronicle.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.AddTurn(ctx, "session-1", domain.Turn{
		TurnSequence:  1,
		PlayerMessage: domain.Message{Role: domain.RolePlayer, Content: "hello"},
		GMMessage:     domain.Message{Role: domain.RoleGM, Content: "welcome"},
	}); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Errorf("close reopened store: %v", err)
		}
	}()

	state, err := reopened.GetSessionState(ctx, "session-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.TurnSequence != 1 || len(state.Turns) != 1 {
		t.Fatalf("state did not survive reopen: seq=%d turns=%d", state.TurnSequence, len(state.Turns))
	}
	if state.Turns[0].GMMessage.Content != "welcome" {
		t.Fatalf("turn payload did not survive reopen: %q", state.Turns[0].GMMessage.Content)
	}
}

func TestAuditEventsPersistNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 1; i <= 3; i++ {
		err := store.AppendAuditEvent(ctx, storage.AuditEvent{
			Timestamp:    base.Add(time.Duration(i) * time.Second),
			EventName:    "turn.committed",
			Severity:     "INFO",
			SessionID:    "session-1",
			TurnSequence: i,
			Node:         "narrative_weaver",
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := store.ListAuditEvents(ctx, "session-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].TurnSequence != 3 || events[1].TurnSequence != 2 {
		t.Fatalf("expected newest first, got sequences %d then %d", events[0].TurnSequence, events[1].TurnSequence)
	}
	if events[0].Node != "narrative_weaver" {
		t.Fatalf("node not preserved: %q", events[0].Node)
	}
}
