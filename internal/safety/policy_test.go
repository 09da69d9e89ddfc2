package safety

import (
	"testing"

	"github.com/sablewood/chronicle/internal/turn/domain"
)

func TestAssessCleanMessage(t *testing.T) {
	policy := NewPolicy()

	assessment, err := policy.Assess("I walk to the market and haggle for apples.", "buy apples")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if assessment.Escalate {
		t.Fatal("clean message must not escalate")
	}
	if len(assessment.Flags) != 0 {
		t.Fatalf("expected no flags, got %v", assessment.Flags)
	}
	if assessment.Severity != domain.SafetySeverityNone {
		t.Fatalf("expected no severity, got %s", assessment.Severity)
	}
}

func TestAssessHighSeverityEscalates(t *testing.T) {
	policy := NewPolicy(WithIDGenerator(func() (string, error) { return "ref-1", nil }))

	assessment, err := policy.Assess("I torture the prisoner until he talks.", "interrogate the prisoner")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !assessment.Escalate {
		t.Fatal("high severity match must escalate")
	}
	if assessment.Severity != domain.SafetySeverityHigh {
		t.Fatalf("expected high severity, got %s", assessment.Severity)
	}
	if assessment.AuditRef != "ref-1" {
		t.Fatalf("expected stamped audit ref, got %q", assessment.AuditRef)
	}
	if len(assessment.Flags) != 1 || assessment.Flags[0].Category != "graphic_violence" {
		t.Fatalf("unexpected flags: %v", assessment.Flags)
	}
}

func TestAssessBelowThresholdFlagsWithoutEscalating(t *testing.T) {
	policy := NewPolicy()

	assessment, err := policy.Assess("He threatened to dox her after the game.", "report harassment")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if assessment.Escalate {
		t.Fatal("medium severity must not cross the default high threshold")
	}
	if len(assessment.Flags) != 1 || assessment.Flags[0].Category != "harassment" {
		t.Fatalf("unexpected flags: %v", assessment.Flags)
	}
	if assessment.AuditRef != "" {
		t.Fatal("no audit ref without escalation")
	}
}

func TestAssessThresholdOverride(t *testing.T) {
	policy := NewPolicy(
		WithThreshold(domain.SafetySeverityMedium),
		WithIDGenerator(func() (string, error) { return "ref-2", nil }),
	)

	assessment, err := policy.Assess("He threatened to dox her.", "")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !assessment.Escalate {
		t.Fatal("medium severity must escalate under a medium threshold")
	}
	if assessment.AuditRef != "ref-2" {
		t.Fatalf("expected audit ref, got %q", assessment.AuditRef)
	}
}

func TestAssessAccumulatesFlags(t *testing.T) {
	policy := NewPolicy(WithIDGenerator(func() (string, error) { return "ref-3", nil }))

	assessment, err := policy.Assess("First torture him, then dox the witness.", "")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if len(assessment.Flags) != 2 {
		t.Fatalf("expected 2 flags, got %v", assessment.Flags)
	}
	if assessment.Severity != domain.SafetySeverityHigh {
		t.Fatalf("expected max severity high, got %s", assessment.Severity)
	}
}

func TestAssessMatchesIntentSummary(t *testing.T) {
	policy := NewPolicy(WithIDGenerator(func() (string, error) { return "ref-4", nil }))

	assessment, err := policy.Assess("You know what I want to do to him.", "torture the captive for information")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !assessment.Escalate {
		t.Fatal("classified intent must be assessed alongside the raw message")
	}
}

func TestAssessCustomCategories(t *testing.T) {
	policy := NewPolicy(
		WithCategories([]Category{{
			Name:     "table_rules",
			Severity: domain.SafetySeverityHigh,
			Terms:    []string{"spiders"},
		}}),
		WithIDGenerator(func() (string, error) { return "ref-5", nil }),
	)

	assessment, err := policy.Assess("A wave of spiders pours from the wall.", "")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if !assessment.Escalate || assessment.Flags[0].Category != "table_rules" {
		t.Fatalf("custom category did not apply: %+v", assessment)
	}

	clean, err := policy.Assess("I torture the prisoner.", "")
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if len(clean.Flags) != 0 {
		t.Fatal("replacing categories must drop the defaults")
	}
}
