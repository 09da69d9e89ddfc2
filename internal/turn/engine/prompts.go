package engine

import (
	"fmt"
	"strings"

	"github.com/sablewood/chronicle/internal/turn/domain"
)

// classificationSystemPrompt frames the intent classifier. The model must
// return a single JSON object so the intake node can parse it mechanically.
const classificationSystemPrompt = `You classify one player message from a tabletop role-play session.
Respond with a single JSON object and nothing else:
{
  "intent_summary": "one line restating what the player is trying to do",
  "tone": "cautious|bold|social|hostile|reflective",
  "skill": "investigation|stealth|persuasion|athletics|lore|survival|\"\"",
  "attribute": "focus|vigor|presence|guile|\"\"",
  "proposes_new_beat": true
}
Leave skill and attribute empty unless the message clearly implies a testable action.`

// buildClassificationPrompt renders the user half of the intent packet.
func buildClassificationPrompt(scene *domain.SceneFrame, message domain.Message) string {
	var b strings.Builder
	if scene != nil {
		if scene.LocationName != "" {
			fmt.Fprintf(&b, "CURRENT LOCATION: %s\n%s\n\n", scene.LocationName, scene.LocationSummary)
		}
		if scene.CharacterBlurb != "" {
			fmt.Fprintf(&b, "CHARACTER: %s\n\n", scene.CharacterBlurb)
		}
	}
	fmt.Fprintf(&b, "PLAYER MESSAGE:\n%s\n", message.Content)
	return b.String()
}

// narrationSystemPrompt frames the weaver. Kept separate from the degraded
// variant so redirect instructions never leak into normal turns.
const narrationSystemPrompt = `You are the game master for a collaborative narrative role-play session.
Narrate the next beat in 2-5 vivid sentences, present tense, second person.
Ground the narration in the scene, the player's intent, and the check outcome when one is given.
Respond with a single JSON object and nothing else:
{
  "narration": "the prose the player reads",
  "summary": "one line for the session log",
  "world_deltas": [{"kind": "...", "target": "...", "detail": "..."}]
}`

// degradedNarrationInstruction is appended when the safety gate escalated.
// The weaver acknowledges the player in fiction and steers the scene away
// from the flagged content without referencing moderation.
const degradedNarrationInstruction = `
SAFETY CONSTRAINT: the player's requested action cannot be depicted.
Do not continue or describe the requested action. Redirect the scene toward a
different narrative path, in fiction, without breaking the fourth wall and
without scolding the player.`

// buildNarrationPrompt renders the user half of the weaver packet.
func buildNarrationPrompt(ec *ExecutionContext) string {
	var b strings.Builder
	scene := ec.Scene
	if scene != nil {
		if scene.LocationName != "" {
			fmt.Fprintf(&b, "SCENE: %s\n%s\n\n", scene.LocationName, scene.LocationSummary)
		}
		if scene.CharacterBlurb != "" {
			fmt.Fprintf(&b, "CHARACTER: %s\n\n", scene.CharacterBlurb)
		}
		if len(scene.RecentBeats) > 0 {
			b.WriteString("RECENT BEATS:\n")
			for _, beat := range scene.RecentBeats {
				fmt.Fprintf(&b, "- %s\n", beat)
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "PLAYER MESSAGE:\n%s\n\n", ec.Message.Content)
	if ec.Intent != nil {
		fmt.Fprintf(&b, "CLASSIFIED INTENT: %s (tone: %s)\n\n", ec.Intent.IntentSummary, ec.Intent.Tone)
	}
	switch {
	case ec.CheckResult != nil:
		result := ec.CheckResult
		fmt.Fprintf(&b, "CHECK OUTCOME: %s check resolved as %s (total %d vs difficulty %d). Narrate this outcome.\n",
			result.Plan.Skill, result.OutcomeTier, result.Total, result.Plan.Difficulty)
	case ec.CheckRequest != nil:
		fmt.Fprintf(&b, "CHECK PENDING: a %s check was sent for external resolution. Narrate up to the moment of uncertainty; do not reveal an outcome.\n",
			ec.CheckRequest.Skill)
	}
	return b.String()
}
