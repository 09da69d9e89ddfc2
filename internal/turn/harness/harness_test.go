package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/storage/memory"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

type fakeDispatcher struct {
	envelopes []domain.CheckRequestEnvelope
	err       error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, envelope domain.CheckRequestEnvelope) error {
	if f.err != nil {
		return f.err
	}
	f.envelopes = append(f.envelopes, envelope)
	return nil
}

type fakeModerationQueue struct {
	escalations []domain.Escalation
	err         error
}

func (f *fakeModerationQueue) Escalate(_ context.Context, escalation domain.Escalation) error {
	if f.err != nil {
		return f.err
	}
	f.escalations = append(f.escalations, escalation)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
}

func commitInput() CommitInput {
	return CommitInput{
		SessionID:    "session-1",
		PlayerID:     "player-1",
		TurnSequence: 1,
		PlayerMessage: domain.Message{
			Role:     domain.RolePlayer,
			AuthorID: "player-1",
			Content:  "I search the docks for the smuggler.",
		},
		Intent: domain.Intent{
			IntentSummary: "search the docks",
			Skill:         domain.SkillInvestigation,
		},
		Narrative: domain.NarrativeEvent{
			Content: "The docks are quiet under the fog.",
			Summary: "Searched the docks.",
		},
	}
}

func TestCommitTurnAppendsTurn(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if _, err := store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	h := New(store, nil, nil, nil, fixedClock)
	state, turn, err := h.CommitTurn(ctx, commitInput())
	if err != nil {
		t.Fatalf("commit turn: %v", err)
	}

	if state.TurnSequence != 1 {
		t.Fatalf("expected turn sequence 1, got %d", state.TurnSequence)
	}
	if len(state.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(state.Turns))
	}
	if turn.GMMessage.Role != domain.RoleGM {
		t.Fatalf("expected GM role, got %q", turn.GMMessage.Role)
	}
	if turn.GMMessage.Content != "The docks are quiet under the fog." {
		t.Fatalf("unexpected GM content: %q", turn.GMMessage.Content)
	}
	if turn.SystemMessage != nil {
		t.Fatal("expected no system message without escalation")
	}
	if !turn.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("expected fixed created-at, got %v", turn.CreatedAt)
	}
}

func TestCommitTurnDispatchesCheckRequest(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if _, err := store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	dispatcher := &fakeDispatcher{}
	h := New(store, dispatcher, nil, nil, fixedClock)

	in := commitInput()
	in.CheckRequest = &domain.CheckRequestEnvelope{
		CheckID:      "check-1",
		SessionID:    "session-1",
		TurnSequence: 1,
		Skill:        domain.SkillInvestigation,
		Difficulty:   12,
	}

	if _, _, err := h.CommitTurn(ctx, in); err != nil {
		t.Fatalf("commit turn: %v", err)
	}
	if len(dispatcher.envelopes) != 1 {
		t.Fatalf("expected 1 dispatched envelope, got %d", len(dispatcher.envelopes))
	}
	if dispatcher.envelopes[0].CheckID != "check-1" {
		t.Fatalf("unexpected check id: %q", dispatcher.envelopes[0].CheckID)
	}
}

func TestCommitTurnEscalationAddsSystemMessage(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if _, err := store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	queue := &fakeModerationQueue{}
	h := New(store, nil, queue, nil, fixedClock)

	in := commitInput()
	in.Safety = &domain.SafetyAssessment{
		Escalate: true,
		Severity: domain.SafetySeverityHigh,
		Reason:   "graphic_violence",
		AuditRef: "audit-ref-1",
	}

	_, turn, err := h.CommitTurn(ctx, in)
	if err != nil {
		t.Fatalf("commit turn: %v", err)
	}

	if len(queue.escalations) != 1 {
		t.Fatalf("expected 1 escalation, got %d", len(queue.escalations))
	}
	if queue.escalations[0].AuditRef != "audit-ref-1" {
		t.Fatalf("unexpected audit ref: %q", queue.escalations[0].AuditRef)
	}
	if turn.SystemMessage == nil {
		t.Fatal("expected a system message on escalation")
	}
	if turn.SystemMessage.Metadata["audit_ref"] != "audit-ref-1" {
		t.Fatalf("unexpected system message metadata: %v", turn.SystemMessage.Metadata)
	}
}

func TestCommitTurnDispatchFailureLeavesStoreUnchanged(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if _, err := store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	dispatcher := &fakeDispatcher{err: errors.New("broker down")}
	h := New(store, dispatcher, nil, nil, fixedClock)

	in := commitInput()
	in.CheckRequest = &domain.CheckRequestEnvelope{CheckID: "check-1"}

	_, _, err := h.CommitTurn(ctx, in)
	if err == nil {
		t.Fatal("expected dispatch error")
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeDispatchFailed {
		t.Fatalf("expected dispatch failed code, got %v", err)
	}

	state, err := store.GetSessionState(ctx, "session-1")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if len(state.Turns) != 0 {
		t.Fatalf("expected no committed turns, got %d", len(state.Turns))
	}
}

func TestCommitTurnSequenceConflict(t *testing.T) {
	store := memory.NewSessionStore()
	ctx := context.Background()
	if _, err := store.EnsureSession(ctx, "session-1"); err != nil {
		t.Fatalf("ensure session: %v", err)
	}

	h := New(store, nil, nil, nil, fixedClock)

	in := commitInput()
	in.TurnSequence = 5

	_, _, err := h.CommitTurn(ctx, in)
	if err == nil {
		t.Fatal("expected sequence conflict")
	}
	if !errors.Is(err, storage.ErrSequenceConflict) {
		t.Fatalf("expected sequence conflict sentinel in the chain, got %v", err)
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeSessionSequenceConflict {
		t.Fatalf("expected sequence conflict code, got %v", err)
	}
}
