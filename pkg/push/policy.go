package push

import (
	"time"

	"github.com/odvcencio/ember/pkg/synthesis"
	"github.com/odvcencio/ember/pkg/views"
)

// minNotificationGap is the shortest allowed spacing between two
// notifications to the same user.
const minNotificationGap = 4 * time.Hour

// DailyCap returns how many notifications a user may receive per day.
// Engaged users tolerate a second nudge; everyone else gets at most one.
func DailyCap(engagement synthesis.EngagementLevel) int {
	if engagement == synthesis.EngagementDaily {
		return 2
	}
	return 1
}

// ShouldSend decides whether a notification may go out right now. The
// returned reason names the gate that blocked it, empty when allowed.
func ShouldSend(view views.NotificationPolicyView, now time.Time) (bool, string) {
	hour := now.Hour()
	for _, h := range view.IgnoredHours {
		if h == hour {
			return false, "quiet_hours"
		}
	}

	if view.SentToday >= DailyCap(view.Engagement) {
		return false, "daily_cap"
	}

	if !view.LastNotificationAt.IsZero() && now.Sub(view.LastNotificationAt) < minNotificationGap {
		return false, "too_soon"
	}

	// A user who was in the app moments ago does not need a push.
	if !view.LastAppOpenAt.IsZero() && now.Sub(view.LastAppOpenAt) < time.Hour {
		return false, "recently_active"
	}

	return true, ""
}
