package domain

// SafetySeverity ranks how serious a triggered safety category is.
type SafetySeverity int

const (
	SafetySeverityNone SafetySeverity = iota
	SafetySeverityLow
	SafetySeverityMedium
	SafetySeverityHigh
	SafetySeverityCritical
)

func (s SafetySeverity) String() string {
	switch s {
	case SafetySeverityNone:
		return "none"
	case SafetySeverityLow:
		return "low"
	case SafetySeverityMedium:
		return "medium"
	case SafetySeverityHigh:
		return "high"
	case SafetySeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// SafetyFlag is one triggered policy category.
type SafetyFlag struct {
	Category string
	Severity SafetySeverity
	Detail   string
}

// SafetyAssessment is the safety gate's verdict for one turn. Escalation is
// advisory input to downstream nodes, never a veto: the pipeline degrades
// instead of aborting so the player always receives an in-fiction response.
type SafetyAssessment struct {
	Escalate bool
	Severity SafetySeverity
	Flags    []SafetyFlag
	Reason   string
	// AuditRef correlates the assessment with the audit-trail entry that is
	// forwarded to moderation on escalation.
	AuditRef string
}

// Escalation is the payload dispatched to the moderation queue when a turn
// escalates.
type Escalation struct {
	AuditRef  string
	SessionID string
	PlayerID  string
	Severity  SafetySeverity
	Flags     []SafetyFlag
	Reason    string
}
