package domain

import "time"

// Skill identifies a testable proficiency.
type Skill string

const (
	SkillUnspecified   Skill = ""
	SkillInvestigation Skill = "investigation"
	SkillStealth       Skill = "stealth"
	SkillPersuasion    Skill = "persuasion"
	SkillAthletics     Skill = "athletics"
	SkillLore          Skill = "lore"
	SkillSurvival      Skill = "survival"
)

// IsValid reports whether the skill is a known value.
func (s Skill) IsValid() bool {
	switch s {
	case SkillInvestigation, SkillStealth, SkillPersuasion, SkillAthletics, SkillLore, SkillSurvival:
		return true
	default:
		return false
	}
}

// Attribute identifies the character attribute a check draws on.
type Attribute string

const (
	AttributeUnspecified Attribute = ""
	AttributeFocus       Attribute = "focus"
	AttributeVigor       Attribute = "vigor"
	AttributePresence    Attribute = "presence"
	AttributeGuile       Attribute = "guile"
)

// IsValid reports whether the attribute is a known value.
func (a Attribute) IsValid() bool {
	switch a {
	case AttributeFocus, AttributeVigor, AttributePresence, AttributeGuile:
		return true
	default:
		return false
	}
}

// Advantage describes the advantage state of a planned check.
type Advantage int

const (
	AdvantageNone Advantage = iota
	AdvantageFavored
	AdvantageHindered
)

func (a Advantage) String() string {
	switch a {
	case AdvantageNone:
		return "none"
	case AdvantageFavored:
		return "favored"
	case AdvantageHindered:
		return "hindered"
	default:
		return "unknown"
	}
}

// OutcomeTier is the enumerated result band of a resolved skill check.
type OutcomeTier string

const (
	OutcomeTierUnspecified  OutcomeTier = ""
	OutcomeTierBreakthrough OutcomeTier = "breakthrough"
	OutcomeTierAdvance      OutcomeTier = "advance"
	OutcomeTierStall        OutcomeTier = "stall"
	OutcomeTierRegress      OutcomeTier = "regress"
	OutcomeTierCollapse     OutcomeTier = "collapse"
)

// IsValid reports whether the outcome tier is a known value.
func (o OutcomeTier) IsValid() bool {
	switch o {
	case OutcomeTierBreakthrough, OutcomeTierAdvance, OutcomeTierStall, OutcomeTierRegress, OutcomeTierCollapse:
		return true
	default:
		return false
	}
}

// SkillCheckPlan describes a check the planner decided the action warrants.
type SkillCheckPlan struct {
	Skill      Skill
	Attribute  Attribute
	Advantage  Advantage
	Difficulty int
	Reason     string
}

// SkillCheckResult is a resolved check outcome.
type SkillCheckResult struct {
	Plan        SkillCheckPlan
	Rolls       []int
	Modifier    int
	Total       int
	OutcomeTier OutcomeTier
	Seed        int64
	ResolvedAt  time.Time
}

// CheckRequestEnvelope packages a check for asynchronous resolution by an
// external engine. It carries enough data to compute an outcome
// independently of the narrative text.
type CheckRequestEnvelope struct {
	CheckID      string
	SessionID    string
	TurnSequence int
	Skill        Skill
	Attribute    Attribute
	Advantage    Advantage
	Difficulty   int
	Modifier     int
	Seed         int64
	RequestedAt  time.Time
}
