// Package safety evaluates player messages against content policy
// categories. Assessments are advisory: they narrow and redirect downstream
// narrative generation and notify a moderation queue, they never drop a
// turn.
package safety

import (
	"fmt"
	"strings"

	"github.com/sablewood/chronicle/internal/platform/id"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// Category is one policy category with its trigger terms.
type Category struct {
	Name     string
	Severity domain.SafetySeverity
	Terms    []string
}

// Policy holds the category set and the escalation threshold.
type Policy struct {
	categories  []Category
	threshold   domain.SafetySeverity
	idGenerator func() (string, error)
}

// Option configures a Policy.
type Option func(*Policy)

// WithCategories replaces the default category set.
func WithCategories(categories []Category) Option {
	return func(p *Policy) { p.categories = categories }
}

// WithThreshold sets the severity at or above which a turn escalates.
func WithThreshold(threshold domain.SafetySeverity) Option {
	return func(p *Policy) { p.threshold = threshold }
}

// WithIDGenerator overrides audit reference generation.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(p *Policy) { p.idGenerator = generator }
}

// NewPolicy creates a policy with the default category set and a High
// escalation threshold.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		categories:  defaultCategories(),
		threshold:   domain.SafetySeverityHigh,
		idGenerator: id.NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Assess evaluates the player message and classified intent summary against
// every category. Flags accumulate; any flag at or above the threshold sets
// Escalate and stamps an audit reference.
func (p *Policy) Assess(content, intentSummary string) (domain.SafetyAssessment, error) {
	haystack := strings.ToLower(content + "\n" + intentSummary)

	assessment := domain.SafetyAssessment{}
	for _, category := range p.categories {
		term := matchTerm(haystack, category.Terms)
		if term == "" {
			continue
		}
		assessment.Flags = append(assessment.Flags, domain.SafetyFlag{
			Category: category.Name,
			Severity: category.Severity,
			Detail:   fmt.Sprintf("matched term %q", term),
		})
		if category.Severity > assessment.Severity {
			assessment.Severity = category.Severity
		}
	}

	if assessment.Severity >= p.threshold {
		assessment.Escalate = true
		assessment.Reason = fmt.Sprintf("severity %s meets escalation threshold %s", assessment.Severity, p.threshold)
		auditRef, err := p.idGenerator()
		if err != nil {
			return domain.SafetyAssessment{}, fmt.Errorf("generate audit ref: %w", err)
		}
		assessment.AuditRef = auditRef
	}
	return assessment, nil
}

func matchTerm(haystack string, terms []string) string {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

// defaultCategories is the built-in policy set. Deployments tune categories
// through WithCategories; the defaults intentionally favor recall over
// precision because escalation degrades rather than blocks.
func defaultCategories() []Category {
	return []Category{
		{
			Name:     "self_harm",
			Severity: domain.SafetySeverityCritical,
			Terms:    []string{"kill myself", "hurt myself", "end my life"},
		},
		{
			Name:     "sexual_content_minors",
			Severity: domain.SafetySeverityCritical,
			Terms:    []string{"child in a sexual", "minor in a sexual"},
		},
		{
			Name:     "graphic_violence",
			Severity: domain.SafetySeverityHigh,
			Terms:    []string{"torture", "flay", "dismember", "mutilate"},
		},
		{
			Name:     "hate_speech",
			Severity: domain.SafetySeverityHigh,
			Terms:    []string{"racial slur", "ethnic cleansing"},
		},
		{
			Name:     "harassment",
			Severity: domain.SafetySeverityMedium,
			Terms:    []string{"dox", "harass the player"},
		},
	}
}
