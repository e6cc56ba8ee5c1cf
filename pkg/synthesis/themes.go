package synthesis

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/ember/pkg/signal"
)

// Extraction caps.
const (
	maxThemes        = 5
	maxChallenges    = 3
	maxGrowthAreas   = 2
	maxWins          = 3
	challengeWindow  = 20
	growthMinEntries = 10
	growthMoodWindow = 10
	excerptLimit     = 120
)

// themeVocabulary is the fallback scan list when entries carry no tags.
var themeVocabulary = []string{
	"work", "family", "sleep", "health", "friends", "relationship",
	"money", "exercise", "school", "travel", "creativity", "gratitude",
}

// challengePhrases is the fixed list matched against recent entry text.
var challengePhrases = []string{
	"keep procrastinating", "can't focus", "always tired", "keep arguing",
	"can't stop worrying", "never have time", "keep putting off",
	"struggling with", "same mistake", "still haven't",
}

// streakMilestones are the crossings that count as wins, descending.
var streakMilestones = []int{100, 60, 30, 14, 7}

// ExtractThemes aggregates entry tags by frequency, falling back to a
// vocabulary scan of entry text when no tags exist. Returns at most five
// themes, most frequent first.
func ExtractThemes(entries []signal.Entry) []string {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, tag := range e.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				counts[tag]++
			}
		}
	}

	if len(counts) == 0 {
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(strings.ToLower(e.Text))
			b.WriteByte(' ')
		}
		text := b.String()
		for _, word := range themeVocabulary {
			if n := strings.Count(text, word); n > 0 {
				counts[word] = n
			}
		}
	}

	return topByCount(counts, maxThemes)
}

// ExtractChallenges matches the fixed challenge phrase list against the
// last 20 entries' text. Returns at most three, most frequent first.
func ExtractChallenges(entries []signal.Entry) []string {
	if len(entries) > challengeWindow {
		entries = entries[:challengeWindow]
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.ToLower(e.Text))
		b.WriteByte(' ')
	}
	text := b.String()

	counts := make(map[string]int)
	for _, phrase := range challengePhrases {
		if n := strings.Count(text, phrase); n > 0 {
			counts[phrase] = n
		}
	}
	return topByCount(counts, maxChallenges)
}

// DetectGrowthAreas returns up to two themes the user is working through,
// with illustrative evidence and first/last-seen dates. Only computed with
// enough history and when recent mood skews positive.
func DetectGrowthAreas(entries []signal.Entry, themes []string) []GrowthArea {
	if len(entries) < growthMinEntries {
		return nil
	}
	if positiveRatio(firstN(entries, growthMoodWindow)) <= 0.5 {
		return nil
	}

	var areas []GrowthArea
	for _, theme := range themes {
		if len(areas) == maxGrowthAreas {
			break
		}
		area, ok := growthAreaFor(theme, entries)
		if ok {
			areas = append(areas, area)
		}
	}
	return areas
}

func growthAreaFor(theme string, entries []signal.Entry) (GrowthArea, bool) {
	area := GrowthArea{Theme: theme}
	found := false
	for _, e := range entries {
		text := strings.ToLower(e.Text)
		tagged := false
		for _, tag := range e.Tags {
			if strings.EqualFold(tag, theme) {
				tagged = true
				break
			}
		}
		if !tagged && !strings.Contains(text, theme) {
			continue
		}
		// Entries are most-recent-first: the first hit is the last seen.
		if !found {
			area.LastSeen = e.CreatedAt
			area.Evidence = excerpt(e.Text, excerptLimit)
		}
		area.FirstSeen = e.CreatedAt
		found = true
	}
	return area, found
}

// DetectWins finds streak-milestone crossings on either track plus the
// first-entry-ever win. At most three, most salient first.
func DetectWins(bundle *signal.Bundle) []Win {
	var wins []Win

	if bundle.EntryCount() == 1 {
		wins = append(wins, Win{
			Kind:        WinFirstEntry,
			Description: "Wrote a first journal entry",
		})
	}

	for _, milestone := range streakMilestones {
		if bundle.Streaks.Journal.Current >= milestone {
			wins = append(wins, Win{
				Kind:        WinStreakMilestone,
				Track:       "journal",
				Milestone:   milestone,
				Description: fmt.Sprintf("Reached a %d-day journaling streak", milestone),
			})
			break
		}
	}
	for _, milestone := range streakMilestones {
		if bundle.Streaks.CheckIn.Current >= milestone {
			wins = append(wins, Win{
				Kind:        WinStreakMilestone,
				Track:       "checkin",
				Milestone:   milestone,
				Description: fmt.Sprintf("Reached a %d-day check-in streak", milestone),
			})
			break
		}
	}

	// Most salient first: bigger milestones ahead of smaller, the
	// first-entry win ahead of everything.
	sort.SliceStable(wins, func(i, j int) bool {
		if wins[i].Kind == WinFirstEntry {
			return true
		}
		if wins[j].Kind == WinFirstEntry {
			return false
		}
		return wins[i].Milestone > wins[j].Milestone
	})

	if len(wins) > maxWins {
		wins = wins[:maxWins]
	}
	return wins
}

func topByCount(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func firstN(entries []signal.Entry, n int) []signal.Entry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

func excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
