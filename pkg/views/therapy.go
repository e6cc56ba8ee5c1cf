package views

import (
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/synthesis"
)

// maxExcerptLen bounds each recent-entry excerpt.
const maxExcerptLen = 200

// maxExcerpts bounds how many recent entries the session context carries.
const maxExcerpts = 5

// TherapyExtras is the extra signal data the therapy projector reads.
type TherapyExtras struct {
	RecentEntries []signal.Entry
	Sessions      []signal.SessionSummary
}

// TherapyView is the context handed to a new support session.
type TherapyView struct {
	DisplayName         string
	Tone                synthesis.Tone
	Trust               synthesis.TrustLevel
	MoodTrend           synthesis.MoodTrend
	StressSignals       []synthesis.StressSignal
	RecentExcerpts      []string
	PriorSessionSummary string
	SessionCount        int
	SuggestedApproach   string
	CrisisHistory       bool
	SensitiveTriggers   []string
}

// ProjectTherapy builds the therapy-session view.
func ProjectTherapy(ctx *synthesis.Context, extras TherapyExtras) TherapyView {
	view := TherapyView{
		DisplayName:       ctx.DisplayName,
		Tone:              ctx.Tone,
		Trust:             ctx.Trust,
		MoodTrend:         ctx.MoodTrend,
		StressSignals:     ctx.StressSignals,
		RecentExcerpts:    excerpts(extras.RecentEntries),
		SessionCount:      len(extras.Sessions),
		SuggestedApproach: majorityTechnique(extras.Sessions),
		CrisisHistory:     crisisHistory(extras.Sessions),
		SensitiveTriggers: topicsToAvoid(extras.RecentEntries),
	}
	if len(extras.Sessions) > 0 {
		view.PriorSessionSummary = extras.Sessions[0].Summary
	}
	return view
}

func excerpts(entries []signal.Entry) []string {
	if len(entries) > maxExcerpts {
		entries = entries[:maxExcerpts]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		text := strings.TrimSpace(e.Text)
		if text == "" {
			continue
		}
		if len(text) > maxExcerptLen {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := maxExcerptLen
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		out = append(out, text)
	}
	return out
}

// majorityTechnique votes over the techniques used in past sessions. Ties
// break toward the technique used most recently.
func majorityTechnique(sessions []signal.SessionSummary) string {
	counts := make(map[string]int)
	best := ""
	bestCount := 0
	for _, s := range sessions {
		for _, technique := range s.Techniques {
			counts[technique]++
			if counts[technique] > bestCount {
				best = technique
				bestCount = counts[technique]
			}
		}
	}
	return best
}

func crisisHistory(sessions []signal.SessionSummary) bool {
	for _, s := range sessions {
		if s.CrisisFlagged {
			return true
		}
	}
	return false
}
