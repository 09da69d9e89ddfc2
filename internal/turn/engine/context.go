package engine

import (
	"time"

	"github.com/sablewood/chronicle/internal/ai"
	"github.com/sablewood/chronicle/internal/telemetry"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// ExecutionContext is the value threaded through the node pipeline for
// exactly one turn. It is created by the orchestrator's caller, owned by the
// in-flight run, and never shared across concurrent turns.
type ExecutionContext struct {
	SessionID string
	PlayerID  string
	// TurnSequence is the proposed next sequence number for this turn.
	TurnSequence int
	// Message is the incoming player message.
	Message domain.Message
	// Session is a snapshot of session state taken before the run started.
	Session domain.SessionState
	// LLM is the model client handle nodes call for completions.
	LLM ai.Client
	// Telemetry records node-level audit events as they happen.
	Telemetry *telemetry.Emitter

	// AuditTrail accumulates one entry per node, in node order. Nodes
	// append through AppendAudit and never rewrite earlier entries.
	AuditTrail []domain.AuditEntry

	// Node outputs. Each field is written by exactly one node.
	Scene        *domain.SceneFrame
	Intent       *domain.Intent
	Safety       *domain.SafetyAssessment
	CheckPlan    *domain.SkillCheckPlan
	CheckResult  *domain.SkillCheckResult
	CheckRequest *domain.CheckRequestEnvelope
	Narrative    *domain.NarrativeEvent

	clock func() time.Time
}

// ContextParams carries the inputs needed to start a pipeline run.
type ContextParams struct {
	SessionID    string
	PlayerID     string
	TurnSequence int
	Message      domain.Message
	Session      domain.SessionState
	LLM          ai.Client
	Telemetry    *telemetry.Emitter
	Clock        func() time.Time
}

// NewExecutionContext builds the context for one turn.
func NewExecutionContext(params ContextParams) *ExecutionContext {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ExecutionContext{
		SessionID:    params.SessionID,
		PlayerID:     params.PlayerID,
		TurnSequence: params.TurnSequence,
		Message:      params.Message,
		Session:      params.Session,
		LLM:          params.LLM,
		Telemetry:    params.Telemetry,
		clock:        clock,
	}
}

// AppendAudit appends one audit entry for the named node.
func (ec *ExecutionContext) AppendAudit(node, decision, reason, ref string) {
	clock := ec.clock
	if clock == nil {
		clock = time.Now
	}
	ec.AuditTrail = append(ec.AuditTrail, domain.AuditEntry{
		Node:      node,
		Decision:  decision,
		Reason:    reason,
		Ref:       ref,
		Timestamp: clock().UTC(),
	})
}

// Escalated reports whether the safety gate asked for degraded narration.
func (ec *ExecutionContext) Escalated() bool {
	return ec.Safety != nil && ec.Safety.Escalate
}
