// Package harness is the single side-effecting stage of turn processing.
// Pipeline nodes compute outputs into the execution context; the harness
// turns those outputs into a committed turn, dispatched check requests, and
// moderation escalations. Nothing is written to the session store until the
// pipeline has fully succeeded, so a failed turn leaves the transcript
// unchanged.
package harness

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/telemetry"
	"github.com/sablewood/chronicle/internal/turn/bus"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// Harness commits completed pipeline runs.
type Harness struct {
	sessions   storage.SessionStore
	checks     bus.CheckDispatcher
	moderation bus.ModerationQueue
	telemetry  *telemetry.Emitter
	clock      func() time.Time
}

// New creates a harness. Sessions is required; checks, moderation and
// telemetry may be nil, in which case the corresponding dispatch is skipped.
func New(sessions storage.SessionStore, checks bus.CheckDispatcher, moderation bus.ModerationQueue, emitter *telemetry.Emitter, clock func() time.Time) *Harness {
	if clock == nil {
		clock = time.Now
	}
	return &Harness{
		sessions:   sessions,
		checks:     checks,
		moderation: moderation,
		telemetry:  emitter,
		clock:      clock,
	}
}

// CommitInput is the pipeline's output, ready to be made durable.
type CommitInput struct {
	SessionID     string
	PlayerID      string
	TurnSequence  int
	PlayerMessage domain.Message
	Intent        domain.Intent
	Narrative     domain.NarrativeEvent
	Safety        *domain.SafetyAssessment
	CheckPlan     *domain.SkillCheckPlan
	CheckResult   *domain.SkillCheckResult
	CheckRequest  *domain.CheckRequestEnvelope
}

// CommitTurn dispatches side effects and appends the turn. Dispatch runs
// before the append so a dispatch failure rejects the turn with the
// transcript untouched; the append is the commit point.
func (h *Harness) CommitTurn(ctx context.Context, in CommitInput) (domain.SessionState, domain.Turn, error) {
	now := h.clock().UTC()

	if in.Safety != nil && in.Safety.Escalate {
		if err := h.escalate(ctx, in); err != nil {
			return domain.SessionState{}, domain.Turn{}, err
		}
	}
	if in.CheckRequest != nil {
		if err := h.dispatchCheck(ctx, in); err != nil {
			return domain.SessionState{}, domain.Turn{}, err
		}
	}

	turn := h.buildTurn(in, now)
	state, err := h.sessions.AddTurn(ctx, in.SessionID, turn)
	if err != nil {
		if errors.Is(err, storage.ErrSequenceConflict) {
			err = apperrors.Wrap(apperrors.CodeSessionSequenceConflict, "turn sequence conflict on commit", err)
		}
		return domain.SessionState{}, domain.Turn{}, err
	}

	h.emit(ctx, storage.AuditEvent{
		EventName:    "turn.committed",
		Severity:     string(telemetry.SeverityInfo),
		SessionID:    in.SessionID,
		PlayerID:     in.PlayerID,
		TurnSequence: turn.TurnSequence,
		Attributes: map[string]any{
			"degraded":      in.Narrative.Degraded,
			"check_planned": in.CheckPlan != nil,
		},
	})

	return state, turn, nil
}

func (h *Harness) buildTurn(in CommitInput, now time.Time) domain.Turn {
	player := in.PlayerMessage
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}

	turn := domain.Turn{
		TurnSequence:  in.TurnSequence,
		PlayerMessage: player,
		GMMessage: domain.Message{
			Role:      domain.RoleGM,
			Content:   in.Narrative.Content,
			CreatedAt: now,
		},
		PlayerIntent:     in.Intent,
		SkillCheckPlan:   in.CheckPlan,
		SkillCheckResult: in.CheckResult,
		GMSummary:        in.Narrative.Summary,
		CreatedAt:        now,
	}

	if in.Safety != nil && in.Safety.Escalate {
		turn.SystemMessage = &domain.Message{
			Role:      domain.RoleSystem,
			Content:   "This turn was flagged for moderation review.",
			Metadata:  map[string]string{"audit_ref": in.Safety.AuditRef},
			CreatedAt: now,
		}
	}

	return turn
}

func (h *Harness) escalate(ctx context.Context, in CommitInput) error {
	if h.moderation == nil {
		return nil
	}
	escalation := domain.Escalation{
		AuditRef:  in.Safety.AuditRef,
		SessionID: in.SessionID,
		PlayerID:  in.PlayerID,
		Severity:  in.Safety.Severity,
		Flags:     in.Safety.Flags,
		Reason:    in.Safety.Reason,
	}
	if err := h.moderation.Escalate(ctx, escalation); err != nil {
		return apperrors.Wrap(apperrors.CodeDispatchFailed, "escalate to moderation queue", err)
	}
	h.emit(ctx, storage.AuditEvent{
		EventName:    "moderation.escalated",
		Severity:     string(telemetry.SeverityWarn),
		SessionID:    in.SessionID,
		PlayerID:     in.PlayerID,
		TurnSequence: in.TurnSequence,
		Ref:          in.Safety.AuditRef,
		Attributes: map[string]any{
			"severity": in.Safety.Severity.String(),
			"flags":    len(in.Safety.Flags),
		},
	})
	return nil
}

func (h *Harness) dispatchCheck(ctx context.Context, in CommitInput) error {
	if h.checks == nil {
		return nil
	}
	if err := h.checks.Dispatch(ctx, *in.CheckRequest); err != nil {
		return apperrors.Wrap(apperrors.CodeDispatchFailed, "dispatch check request", err)
	}
	h.emit(ctx, storage.AuditEvent{
		EventName:    "check.requested",
		Severity:     string(telemetry.SeverityInfo),
		SessionID:    in.SessionID,
		PlayerID:     in.PlayerID,
		TurnSequence: in.TurnSequence,
		Ref:          in.CheckRequest.CheckID,
		Attributes: map[string]any{
			"skill":      string(in.CheckRequest.Skill),
			"difficulty": in.CheckRequest.Difficulty,
		},
	})
	return nil
}

func (h *Harness) emit(ctx context.Context, evt storage.AuditEvent) {
	if h.telemetry == nil {
		return
	}
	_ = h.telemetry.Emit(ctx, evt)
}
