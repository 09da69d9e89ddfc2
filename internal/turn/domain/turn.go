package domain

import "time"

// MessageRole identifies the author role of a transcript entry.
type MessageRole string

const (
	// RolePlayer marks a message authored by a player.
	RolePlayer MessageRole = "player"
	// RoleGM marks a message authored by the game master.
	RoleGM MessageRole = "gm"
	// RoleSystem marks an out-of-fiction system notice.
	RoleSystem MessageRole = "system"
)

// Message is one transcript entry within a turn.
type Message struct {
	Role      MessageRole
	AuthorID  string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Turn is one complete player-message/GM-response exchange. Turns are built
// by the tool harness once the pipeline completes and are immutable once
// appended to a session.
type Turn struct {
	TurnSequence     int
	PlayerMessage    Message
	GMMessage        Message
	SystemMessage    *Message
	PlayerIntent     Intent
	SkillCheckPlan   *SkillCheckPlan
	SkillCheckResult *SkillCheckResult
	GMSummary        string
	CreatedAt        time.Time
}

// AuditEntry records one node-level decision within a turn. Entries are
// appended in node order and never rewritten.
type AuditEntry struct {
	Node      string
	Decision  string
	Reason    string
	Ref       string
	Timestamp time.Time
}
