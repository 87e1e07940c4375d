package subscriptions

import (
	"time"

	"home-kitchen-market/internal/models"
)

// dateOnly strips the time-of-day component so all schedule arithmetic
// happens on whole calendar days.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDeliveryDate scans forward from the day after asOf through the
// subscription's weekday set and returns the first matching date. The
// weekday set is a fixed calendar rule, not tied to any particular week.
// ok is false when the subscription is not active, or its end date passes
// before any weekday matches. The scan never starts before the plan's
// start date.
func NextDeliveryDate(sub *models.Subscription, asOf time.Time) (time.Time, bool) {
	if sub.Status != models.SubscriptionActive {
		return time.Time{}, false
	}

	start := dateOnly(sub.StartDate)
	end := dateOnly(sub.EndDate)

	cursor := dateOnly(asOf).AddDate(0, 0, 1)
	if cursor.Before(start) {
		cursor = start
	}

	for !cursor.After(end) {
		if sub.DeliveryDays.Contains(cursor.Weekday()) {
			return cursor, true
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}
