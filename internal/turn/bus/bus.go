// Package bus is the publish point for skill-check requests destined for an
// external resolution engine and for safety escalations destined for a
// moderation queue. Dispatch is fire-and-forget: resolution arrives later
// through a separate callback surface that the turn engine does not await.
package bus

import (
	"context"
	"log"

	"github.com/sablewood/chronicle/internal/turn/domain"
)

// CheckDispatcher publishes check requests for asynchronous resolution.
type CheckDispatcher interface {
	Dispatch(ctx context.Context, envelope domain.CheckRequestEnvelope) error
}

// ModerationQueue receives safety escalations.
type ModerationQueue interface {
	Escalate(ctx context.Context, escalation domain.Escalation) error
}

// LogDispatcher is a CheckDispatcher that records dispatches to the process
// log. It stands in until an external resolution engine is wired.
type LogDispatcher struct{}

// Dispatch logs the envelope.
func (LogDispatcher) Dispatch(ctx context.Context, envelope domain.CheckRequestEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf(
		"check dispatched check_id=%s session_id=%s turn_sequence=%d skill=%s attribute=%s difficulty=%d",
		envelope.CheckID,
		envelope.SessionID,
		envelope.TurnSequence,
		envelope.Skill,
		envelope.Attribute,
		envelope.Difficulty,
	)
	return nil
}

// LogModerationQueue is a ModerationQueue that records escalations to the
// process log.
type LogModerationQueue struct{}

// Escalate logs the escalation.
func (LogModerationQueue) Escalate(ctx context.Context, escalation domain.Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf(
		"moderation escalation audit_ref=%s session_id=%s severity=%s flags=%d",
		escalation.AuditRef,
		escalation.SessionID,
		escalation.Severity,
		len(escalation.Flags),
	)
	return nil
}
