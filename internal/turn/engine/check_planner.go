package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sablewood/chronicle/internal/checks"
	"github.com/sablewood/chronicle/internal/platform/id"
	"github.com/sablewood/chronicle/internal/random"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// baseDifficulty is the default target for a planned check before
// situational adjustments.
const baseDifficulty = 12

// CheckPlannerNode decides whether the classified action warrants a skill
// check. When a resolver is configured the check resolves inline; otherwise
// it is packaged as an envelope for asynchronous resolution, and the weaver
// narrates up to the moment of uncertainty. An escalated turn plans no
// check: the weaver redirects the action, so there is no outcome to test
// and nothing is dispatched externally for it.
type CheckPlannerNode struct {
	// Resolver resolves checks synchronously. Nil defers every check.
	Resolver *checks.Resolver
	// NewSeed overrides seed generation. Defaults to random.NewSeed.
	NewSeed func() (int64, error)
	// NewID overrides check id generation. Defaults to id.NewID.
	NewID func() (string, error)
	// Clock overrides request timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Name implements Node.
func (CheckPlannerNode) Name() string { return "check_planner" }

// Process plans and optionally resolves this turn's skill check.
func (n CheckPlannerNode) Process(_ context.Context, ec *ExecutionContext) error {
	if ec.Intent == nil {
		return fmt.Errorf("intent is required before check planning")
	}
	if ec.Safety != nil && ec.Safety.Escalate {
		ec.AppendAudit("check_planner", "no_check", "check skipped while turn is escalated", ec.Safety.AuditRef)
		return nil
	}
	if ec.Intent.Skill == domain.SkillUnspecified {
		ec.AppendAudit("check_planner", "no_check", "intent implies no testable action", "")
		return nil
	}

	plan := n.buildPlan(ec)
	ec.CheckPlan = &plan

	newSeed := n.NewSeed
	if newSeed == nil {
		newSeed = random.NewSeed
	}
	seed, err := newSeed()
	if err != nil {
		return fmt.Errorf("generate check seed: %w", err)
	}
	modifier := checkModifier(ec.Session.Character, plan)

	if n.Resolver != nil {
		result, err := n.Resolver.Resolve(checks.Request{Plan: plan, Modifier: modifier, Seed: seed})
		if err != nil {
			return fmt.Errorf("resolve check: %w", err)
		}
		ec.CheckResult = &result
		ec.AppendAudit("check_planner", "resolved",
			fmt.Sprintf("%s check vs %d resolved as %s", plan.Skill, plan.Difficulty, result.OutcomeTier), "")
		return nil
	}

	newID := n.NewID
	if newID == nil {
		newID = id.NewID
	}
	checkID, err := newID()
	if err != nil {
		return fmt.Errorf("generate check id: %w", err)
	}
	clock := n.Clock
	if clock == nil {
		clock = time.Now
	}
	ec.CheckRequest = &domain.CheckRequestEnvelope{
		CheckID:      checkID,
		SessionID:    ec.SessionID,
		TurnSequence: ec.TurnSequence,
		Skill:        plan.Skill,
		Attribute:    plan.Attribute,
		Advantage:    plan.Advantage,
		Difficulty:   plan.Difficulty,
		Modifier:     modifier,
		Seed:         seed,
		RequestedAt:  clock().UTC(),
	}
	ec.AppendAudit("check_planner", "deferred",
		fmt.Sprintf("%s check packaged for external resolution", plan.Skill), checkID)
	return nil
}

// buildPlan derives plan parameters from intent, scene, and safety state.
func (n CheckPlannerNode) buildPlan(ec *ExecutionContext) domain.SkillCheckPlan {
	intent := ec.Intent
	plan := domain.SkillCheckPlan{
		Skill:      intent.Skill,
		Attribute:  intent.Attribute,
		Difficulty: baseDifficulty,
		Reason:     intent.IntentSummary,
	}
	if plan.Attribute == domain.AttributeUnspecified {
		plan.Attribute = defaultAttribute(plan.Skill)
	}
	// Lingering conditions hinder; a hostile register raises the target.
	if sheet := ec.Session.Character; sheet != nil && len(sheet.Conditions) > 0 {
		plan.Advantage = domain.AdvantageHindered
	}
	if intent.Tone == domain.ToneHostile {
		plan.Difficulty += 2
	}
	return plan
}

// defaultAttribute pairs each skill with its customary attribute when the
// classifier named none.
func defaultAttribute(skill domain.Skill) domain.Attribute {
	switch skill {
	case domain.SkillInvestigation, domain.SkillLore:
		return domain.AttributeFocus
	case domain.SkillAthletics, domain.SkillSurvival:
		return domain.AttributeVigor
	case domain.SkillPersuasion:
		return domain.AttributePresence
	case domain.SkillStealth:
		return domain.AttributeGuile
	default:
		return domain.AttributeFocus
	}
}

// checkModifier sums the character's skill and attribute ratings for the
// plan. A missing sheet contributes zero.
func checkModifier(sheet *domain.CharacterSheet, plan domain.SkillCheckPlan) int {
	if sheet == nil {
		return 0
	}
	return sheet.Skills[string(plan.Skill)] + sheet.Attributes[string(plan.Attribute)]
}
