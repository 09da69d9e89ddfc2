package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/storage/memory"
	turndomain "github.com/sablewood/chronicle/internal/turn/domain"
	turnservice "github.com/sablewood/chronicle/internal/turn/service"
)

type fakeTurnService struct {
	req    turnservice.Request
	result turnservice.Result
	err    error
}

func (f *fakeTurnService) HandleTurn(_ context.Context, req turnservice.Request) (turnservice.Result, error) {
	f.req = req
	if f.err != nil {
		return turnservice.Result{}, f.err
	}
	return f.result, nil
}

func TestTurnSubmitHandlerMapsResult(t *testing.T) {
	turns := &fakeTurnService{result: turnservice.Result{
		Narrative: turndomain.NarrativeEvent{
			Content: "The fog parts.",
			Summary: "Found a clue.",
			WorldDeltas: []turndomain.WorldDelta{
				{Kind: "clue", Target: "docks", Detail: "torn manifest"},
			},
		},
		Safety: &turndomain.SafetyAssessment{Escalate: true, AuditRef: "ref-1"},
		Turn: turndomain.Turn{
			TurnSequence: 3,
			SkillCheckResult: &turndomain.SkillCheckResult{
				Plan: turndomain.SkillCheckPlan{
					Skill:      turndomain.SkillInvestigation,
					Attribute:  turndomain.AttributeFocus,
					Difficulty: 12,
				},
				Rolls:       []int{6, 7},
				Modifier:    5,
				Total:       18,
				OutcomeTier: turndomain.OutcomeTierBreakthrough,
			},
		},
	}}

	handler := TurnSubmitHandler(turns)
	_, out, err := handler(context.Background(), nil, TurnSubmitInput{
		SessionID: "session-1",
		PlayerID:  "player-1",
		Message:   "I search the docks.",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if turns.req.SessionID != "session-1" || turns.req.Content != "I search the docks." {
		t.Fatalf("request not forwarded: %+v", turns.req)
	}
	if out.TurnSequence != 3 || out.Narration != "The fog parts." {
		t.Fatalf("unexpected output: %+v", out)
	}
	if !out.Escalated {
		t.Fatal("expected escalated flag")
	}
	if out.Check == nil || out.Check.Pending {
		t.Fatalf("expected resolved check, got %+v", out.Check)
	}
	if out.Check.Outcome != "breakthrough" || out.Check.Total != 18 {
		t.Fatalf("unexpected check report: %+v", out.Check)
	}
	if len(out.WorldDeltas) != 1 || out.WorldDeltas[0].Kind != "clue" {
		t.Fatalf("unexpected world deltas: %v", out.WorldDeltas)
	}
}

func TestTurnSubmitHandlerPendingCheck(t *testing.T) {
	turns := &fakeTurnService{result: turnservice.Result{
		Narrative: turndomain.NarrativeEvent{Content: "You slip into the shadows."},
		CheckRequest: &turndomain.CheckRequestEnvelope{
			CheckID:    "check-1",
			Skill:      turndomain.SkillStealth,
			Attribute:  turndomain.AttributeGuile,
			Difficulty: 12,
		},
		Turn: turndomain.Turn{TurnSequence: 1},
	}}

	handler := TurnSubmitHandler(turns)
	_, out, err := handler(context.Background(), nil, TurnSubmitInput{
		SessionID: "session-1",
		PlayerID:  "player-1",
		Message:   "I sneak past the guard.",
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Check == nil || !out.Check.Pending || out.Check.CheckID != "check-1" {
		t.Fatalf("expected pending check, got %+v", out.Check)
	}
}

func TestTurnSubmitHandlerPropagatesError(t *testing.T) {
	turns := &fakeTurnService{err: errors.New("model down")}
	handler := TurnSubmitHandler(turns)
	if _, _, err := handler(context.Background(), nil, TurnSubmitInput{SessionID: "s", PlayerID: "p", Message: "m"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSessionGetHandler(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if err := store.SetCharacter(ctx, "session-1", turndomain.CharacterSheet{CharacterID: "char-1", Name: "Iris"}); err != nil {
		t.Fatalf("set character: %v", err)
	}

	handler := SessionGetHandler(store)
	_, out, err := handler(ctx, nil, SessionGetInput{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.SessionID != "session-1" || out.CharacterName != "Iris" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCharacterSetHandler(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC) }

	handler := CharacterSetHandler(store, clock)
	_, out, err := handler(ctx, nil, CharacterSetInput{
		SessionID:   "session-1",
		CharacterID: "char-1",
		Name:        "Iris",
		Skills:      map[string]int{"investigation": 3},
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.CharacterID != "char-1" {
		t.Fatalf("unexpected output: %+v", out)
	}

	state, err := store.GetSessionState(ctx, "session-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.Character == nil || state.Character.Skills["investigation"] != 3 {
		t.Fatalf("character not stored: %+v", state.Character)
	}
	if !state.Character.UpdatedAt.Equal(clock()) {
		t.Fatalf("expected stamped update time, got %v", state.Character.UpdatedAt)
	}
}

func TestTranscriptListHandlerLimitsAndOrders(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := store.AddTurn(ctx, "session-1", turndomain.Turn{
			TurnSequence:  i,
			PlayerMessage: turndomain.Message{Role: turndomain.RolePlayer, Content: "player"},
			GMMessage:     turndomain.Message{Role: turndomain.RoleGM, Content: "gm"},
		})
		if err != nil {
			t.Fatalf("add turn %d: %v", i, err)
		}
	}

	handler := TranscriptListHandler(store)
	_, out, err := handler(ctx, nil, TranscriptListInput{SessionID: "session-1", Limit: 2})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(out.Entries) != 4 {
		t.Fatalf("expected 2 turns as 4 entries, got %d", len(out.Entries))
	}
	if out.Entries[0].TurnSequence != 2 || out.Entries[0].Role != "player" {
		t.Fatalf("unexpected first entry: %+v", out.Entries[0])
	}
	if out.Entries[3].TurnSequence != 3 || out.Entries[3].Role != "gm" {
		t.Fatalf("unexpected last entry: %+v", out.Entries[3])
	}
}

func TestAuditListHandler(t *testing.T) {
	store := memory.NewAuditEventStore()
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		err := store.AppendAuditEvent(ctx, storage.AuditEvent{
			Timestamp:    time.Date(2026, time.March, 14, 10, 0, i, 0, time.UTC),
			EventName:    "turn.committed",
			Severity:     "INFO",
			SessionID:    "session-1",
			TurnSequence: i,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	handler := AuditListHandler(store)
	_, out, err := handler(ctx, nil, AuditListInput{SessionID: "session-1"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(out.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(out.Events))
	}
	if out.Events[0].TurnSequence != 2 {
		t.Fatalf("expected newest first, got %+v", out.Events[0])
	}
}
