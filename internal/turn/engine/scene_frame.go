package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// recentBeatWindow is how many previous turns the scene frame summarizes.
const recentBeatWindow = 5

// SceneFrameNode assembles the ambient narrative context from the session
// snapshot. It is a pure function of session state: no model calls, no side
// effects.
type SceneFrameNode struct{}

// Name implements Node.
func (SceneFrameNode) Name() string { return "scene_frame" }

// Process builds the normalized scene description later nodes consume.
func (SceneFrameNode) Process(_ context.Context, ec *ExecutionContext) error {
	if ec.Session.SessionID == "" {
		return apperrors.New(apperrors.CodeSessionMalformedState, "session snapshot has no id")
	}
	if ec.Session.TurnSequence != len(ec.Session.Turns) {
		return apperrors.WithMetadata(apperrors.CodeSessionMalformedState,
			fmt.Sprintf("session turn sequence %d disagrees with %d recorded turns",
				ec.Session.TurnSequence, len(ec.Session.Turns)),
			map[string]string{"session_id": ec.Session.SessionID},
		)
	}

	frame := domain.SceneFrame{TurnSequence: ec.TurnSequence}
	if loc := ec.Session.Location; loc != nil {
		frame.LocationName = loc.Name
		frame.LocationSummary = loc.Summary
	}
	if sheet := ec.Session.Character; sheet != nil {
		frame.CharacterName = sheet.Name
		frame.CharacterBlurb = characterBlurb(sheet)
	}
	frame.RecentBeats = recentBeats(ec.Session.Turns, recentBeatWindow)

	ec.Scene = &frame
	ec.AppendAudit("scene_frame", "framed",
		fmt.Sprintf("location=%q beats=%d", frame.LocationName, len(frame.RecentBeats)), "")
	return nil
}

// characterBlurb renders a one-line character summary for prompts.
func characterBlurb(sheet *domain.CharacterSheet) string {
	parts := []string{sheet.Name}
	if sheet.Concept != "" {
		parts = append(parts, sheet.Concept)
	}
	if len(sheet.Conditions) > 0 {
		parts = append(parts, "conditions: "+strings.Join(sheet.Conditions, ", "))
	}
	return strings.Join(parts, "; ")
}

// recentBeats returns the newest turns' summaries, oldest first. GM
// summaries are preferred; narration is truncated when no summary exists.
func recentBeats(turns []domain.Turn, window int) []string {
	start := len(turns) - window
	if start < 0 {
		start = 0
	}
	var beats []string
	for _, turn := range turns[start:] {
		beat := turn.GMSummary
		if beat == "" {
			beat = truncate(turn.GMMessage.Content, 160)
		}
		if beat == "" {
			continue
		}
		beats = append(beats, beat)
	}
	return beats
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "…"
}
