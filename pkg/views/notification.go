package views

import (
	"sort"
	"time"

	"github.com/odvcencio/ember/pkg/signal"
	"github.com/odvcencio/ember/pkg/synthesis"
)

// maxPreferredHours bounds the inferred preferred-hour list.
const maxPreferredHours = 3

// Default quiet span used when the histogram shows no activity in an hour:
// late night through early morning.
const (
	quietSpanStart = 22
	quietSpanEnd   = 6
)

// NotificationExtras is the extra data the notification projector reads.
type NotificationExtras struct {
	LastNotificationAt time.Time
	SentToday          int
	OpenRate           float64
	LastAppOpenAt      time.Time
	RecentEntries      []signal.Entry
}

// NotificationPolicyView drives notification timing decisions.
type NotificationPolicyView struct {
	Tone               synthesis.Tone
	Engagement         synthesis.EngagementLevel
	Archetype          synthesis.Archetype
	LastNotificationAt time.Time
	SentToday          int
	OpenRate           float64
	LastAppOpenAt      time.Time
	PreferredHours     []int
	IgnoredHours       []int
}

// ProjectNotificationPolicy builds the notification-policy view.
func ProjectNotificationPolicy(ctx *synthesis.Context, extras NotificationExtras) NotificationPolicyView {
	histogram := hourHistogram(extras.RecentEntries)
	return NotificationPolicyView{
		Tone:               ctx.Tone,
		Engagement:         ctx.Engagement,
		Archetype:          ctx.Archetype,
		LastNotificationAt: extras.LastNotificationAt,
		SentToday:          extras.SentToday,
		OpenRate:           extras.OpenRate,
		LastAppOpenAt:      extras.LastAppOpenAt,
		PreferredHours:     preferredHours(histogram),
		IgnoredHours:       ignoredHours(histogram),
	}
}

func hourHistogram(entries []signal.Entry) [24]int {
	var histogram [24]int
	for _, e := range entries {
		if !e.CreatedAt.IsZero() {
			histogram[e.CreatedAt.Hour()]++
		}
	}
	return histogram
}

// preferredHours picks the most active entry hours, ties toward earlier
// hours.
func preferredHours(histogram [24]int) []int {
	var active []int
	for hour, count := range histogram {
		if count > 0 {
			active = append(active, hour)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if histogram[active[i]] != histogram[active[j]] {
			return histogram[active[i]] > histogram[active[j]]
		}
		return active[i] < active[j]
	})
	if len(active) > maxPreferredHours {
		active = active[:maxPreferredHours]
	}
	return active
}

// ignoredHours is the quiet span minus any hour the user has actually
// journaled in.
func ignoredHours(histogram [24]int) []int {
	var ignored []int
	for hour := quietSpanStart; hour < 24; hour++ {
		if histogram[hour] == 0 {
			ignored = append(ignored, hour)
		}
	}
	for hour := 0; hour <= quietSpanEnd; hour++ {
		if histogram[hour] == 0 {
			ignored = append(ignored, hour)
		}
	}
	return ignored
}
