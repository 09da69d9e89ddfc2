// Package checks resolves skill checks deterministically from a seed.
//
// A check rolls two ten-sided dice (three under favored or hindered
// advantage, keeping the best or worst two), adds the character's modifier,
// and compares the total against the difficulty. The margin maps to one of
// five outcome tiers. Given the same seed, plan, and modifier the resolution
// is always identical, so an external engine can reproduce an outcome from a
// CheckRequestEnvelope alone.
package checks

import (
	"math/rand"
	"sort"
	"time"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// Margin thresholds for mapping a total against difficulty to a tier.
const (
	breakthroughMargin = 5
	stallMargin        = -2
	regressMargin      = -6
)

var (
	// ErrUnknownSkill indicates a plan with a skill outside the known set.
	ErrUnknownSkill = apperrors.New(apperrors.CodeCheckUnknownSkill, "unknown skill")
	// ErrInvalidDifficulty indicates a non-positive difficulty.
	ErrInvalidDifficulty = apperrors.New(apperrors.CodeCheckInvalidDifficulty, "difficulty must be positive")
)

// Request describes one check resolution.
type Request struct {
	Plan     domain.SkillCheckPlan
	Modifier int
	Seed     int64
}

// Resolver resolves skill checks. The zero value uses the wall clock for
// result timestamps.
type Resolver struct {
	clock func() time.Time
}

// NewResolver creates a resolver with default dependencies.
func NewResolver() *Resolver {
	return &Resolver{clock: time.Now}
}

// Resolve computes a deterministic outcome for the request.
func (r *Resolver) Resolve(request Request) (domain.SkillCheckResult, error) {
	if !request.Plan.Skill.IsValid() {
		return domain.SkillCheckResult{}, ErrUnknownSkill
	}
	if request.Plan.Difficulty <= 0 {
		return domain.SkillCheckResult{}, ErrInvalidDifficulty
	}

	rolls := rollPool(request.Seed, request.Plan.Advantage)
	total := request.Modifier
	for _, roll := range rolls {
		total += roll
	}

	clock := time.Now
	if r != nil && r.clock != nil {
		clock = r.clock
	}
	return domain.SkillCheckResult{
		Plan:        request.Plan,
		Rolls:       rolls,
		Modifier:    request.Modifier,
		Total:       total,
		OutcomeTier: tierFor(total, request.Plan.Difficulty, rolls),
		Seed:        request.Seed,
		ResolvedAt:  clock().UTC(),
	}, nil
}

// rollPool rolls the dice pool for the advantage state. Favored rolls three
// dice and keeps the best two; hindered keeps the worst two.
func rollPool(seed int64, advantage domain.Advantage) []int {
	rng := rand.New(rand.NewSource(seed))
	count := 2
	if advantage != domain.AdvantageNone {
		count = 3
	}
	pool := make([]int, count)
	for i := range pool {
		pool[i] = rng.Intn(10) + 1
	}
	if count == 2 {
		return pool
	}
	sort.Ints(pool)
	if advantage == domain.AdvantageFavored {
		return pool[1:]
	}
	return pool[:2]
}

// tierFor maps a margin to an outcome tier. Matched pairs override the
// margin at the extremes: double tens always break through, double ones
// always collapse.
func tierFor(total, difficulty int, rolls []int) domain.OutcomeTier {
	if len(rolls) == 2 {
		if rolls[0] == 10 && rolls[1] == 10 {
			return domain.OutcomeTierBreakthrough
		}
		if rolls[0] == 1 && rolls[1] == 1 {
			return domain.OutcomeTierCollapse
		}
	}

	margin := total - difficulty
	switch {
	case margin >= breakthroughMargin:
		return domain.OutcomeTierBreakthrough
	case margin >= 0:
		return domain.OutcomeTierAdvance
	case margin >= stallMargin:
		return domain.OutcomeTierStall
	case margin >= regressMargin:
		return domain.OutcomeTierRegress
	default:
		return domain.OutcomeTierCollapse
	}
}
