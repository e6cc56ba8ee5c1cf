// Package views projects the canonical context into the feature-specific
// DTOs downstream surfaces consume. Every projector is a pure function of
// the context plus a small amount of extra signal data; none of them
// re-derive raw signals the context already distilled.
package views

import (
	"strings"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/synthesis"
)

// ConversationExtras is the light extra data the conversation projector
// reads beyond the canonical context.
type ConversationExtras struct {
	RecentEntries     []signal.Entry
	LastInteractionAt time.Time
}

// ConversationView feeds the conversational assistant's prompt builder.
type ConversationView struct {
	DisplayName       string
	Tone              synthesis.Tone
	Trust             synthesis.TrustLevel
	RecentThemes      []string
	RecurringPatterns []string
	LastInteractionAt time.Time
	StylePreference   string
	TopicsToAvoid     []string
}

// Style preferences the assistant can render.
const (
	StyleLightAndHumorous  = "light_and_humorous"
	StyleBriefAndPractical = "brief_and_practical"
	StyleSoftAndReassuring = "soft_and_reassuring"
	StyleWarmAndCurious    = "warm_and_curious"
)

// sensitiveTopics is the fixed list scanned against recent text to build
// the avoid list.
var sensitiveTopics = []string{
	"divorce", "breakup", "funeral", "diagnosis", "miscarriage",
	"layoff", "relapse", "custody", "eviction",
}

// ProjectConversation builds the conversation-assistant view.
func ProjectConversation(ctx *synthesis.Context, extras ConversationExtras) ConversationView {
	return ConversationView{
		DisplayName:       ctx.DisplayName,
		Tone:              ctx.Tone,
		Trust:             ctx.Trust,
		RecentThemes:      ctx.RecentThemes,
		RecurringPatterns: ctx.RecurringChallenges,
		LastInteractionAt: extras.LastInteractionAt,
		StylePreference:   stylePreference(ctx, extras.RecentEntries),
		TopicsToAvoid:     topicsToAvoid(extras.RecentEntries),
	}
}

// stylePreference maps tone onto a rendering style, with the keyword scan
// as a secondary signal.
func stylePreference(ctx *synthesis.Context, entries []signal.Entry) string {
	switch ctx.Tone {
	case synthesis.TonePlayful:
		return StyleLightAndHumorous
	case synthesis.ToneDirect:
		return StyleBriefAndPractical
	case synthesis.ToneGentle:
		return StyleSoftAndReassuring
	}

	// Warm tone with consistently short entries still reads as a
	// preference for brevity.
	if len(entries) > 0 {
		total := 0
		for _, e := range entries {
			total += e.WordCount
		}
		if total/len(entries) < 30 {
			return StyleBriefAndPractical
		}
	}
	return StyleWarmAndCurious
}

func topicsToAvoid(entries []signal.Entry) []string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.ToLower(e.Text))
		b.WriteByte(' ')
	}
	text := b.String()

	var avoid []string
	for _, topic := range sensitiveTopics {
		if strings.Contains(text, topic) {
			avoid = append(avoid, topic)
		}
	}
	return avoid
}
