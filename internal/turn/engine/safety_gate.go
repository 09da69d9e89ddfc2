package engine

import (
	"context"
	"fmt"

	"github.com/sablewood/chronicle/internal/safety"
)

// SafetyGateNode evaluates the player message and classified intent against
// the safety policy. Escalation is advisory input to downstream nodes, not a
// veto: this node never drops a turn.
type SafetyGateNode struct {
	Policy *safety.Policy
}

// Name implements Node.
func (SafetyGateNode) Name() string { return "safety_gate" }

// Process produces the safety assessment for this turn.
func (n SafetyGateNode) Process(_ context.Context, ec *ExecutionContext) error {
	if n.Policy == nil {
		return fmt.Errorf("safety policy is required")
	}

	intentSummary := ""
	if ec.Intent != nil {
		intentSummary = ec.Intent.IntentSummary
	}
	assessment, err := n.Policy.Assess(ec.Message.Content, intentSummary)
	if err != nil {
		return fmt.Errorf("assess safety: %w", err)
	}
	ec.Safety = &assessment

	decision := "clear"
	reason := "no policy categories triggered"
	if len(assessment.Flags) > 0 {
		decision = "flagged"
		reason = fmt.Sprintf("%d categories at severity %s", len(assessment.Flags), assessment.Severity)
	}
	if assessment.Escalate {
		decision = "escalated"
		reason = assessment.Reason
	}
	ec.AppendAudit("safety_gate", decision, reason, assessment.AuditRef)
	return nil
}
