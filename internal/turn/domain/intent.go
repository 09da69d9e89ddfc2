package domain

// Tone describes the register of a classified player intent.
type Tone string

const (
	ToneUnspecified Tone = ""
	ToneCautious    Tone = "cautious"
	ToneBold        Tone = "bold"
	ToneSocial      Tone = "social"
	ToneHostile     Tone = "hostile"
	ToneReflective  Tone = "reflective"
)

// Intent is the structured classification of a raw player message.
type Intent struct {
	// IntentSummary is a one-line restatement of what the player is trying
	// to do, suitable for prompts and audit records.
	IntentSummary string
	Tone          Tone
	// Skill and Attribute are set when the message implies a testable
	// action. Empty when no check is suggested.
	Skill     Skill
	Attribute Attribute
	// ProposesNewBeat reports whether the player is opening a new narrative
	// beat rather than continuing the current one.
	ProposesNewBeat bool
}
