package domain

// SceneFrame is the normalized ambient context assembled from session state
// before any model call. Later nodes and prompt packets consume it as-is.
type SceneFrame struct {
	LocationName    string
	LocationSummary string
	CharacterName   string
	CharacterBlurb  string
	RecentBeats     []string
	TurnSequence    int
}

// WorldDelta is a structured side-annotation the weaver may emit alongside
// prose. The core passes deltas through to consumers without interpreting
// them.
type WorldDelta struct {
	Kind   string
	Target string
	Detail string
}

// NarrativeEvent is the game-master beat produced by the narrative weaver.
// Content is never empty: producing some in-fiction response is the hard
// guarantee the pipeline exists to uphold.
type NarrativeEvent struct {
	Content     string
	Summary     string
	WorldDeltas []WorldDelta
	Degraded    bool
}
