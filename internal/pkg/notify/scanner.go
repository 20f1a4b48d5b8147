package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/internal/pkg/clock"
)

// ErrNoRecipientAddress means the member has no address for the requested
// channel.
var ErrNoRecipientAddress = errors.New("member has no recipient address for channel")

// Reminders are not repeated for the same member within this window.
const reminderDedupeWindow = 7 * 24 * time.Hour

// ScanExpiring queues expiry reminders for active memberships ending within
// the next `days` days. A member already reminded inside the dedupe window
// is skipped, so the daily scan never spams. Returns how many reminders
// were queued.
func (q *Queue) ScanExpiring(gymID string, asOf time.Time, days int) (int, error) {
	day := clock.DateOf(asOf)
	expiring, err := q.repos.Membership.ExpiringWithin(gymID, day, day.AddDate(0, 0, days))
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, row := range expiring {
		memberID := row.Membership.MemberID

		exists, err := q.repos.Notification.ExistsForMemberSince(
			gymID, memberID, models.NotificationTypeExpiryReminder, day.Add(-reminderDedupeWindow))
		if err != nil {
			return queued, err
		}
		if exists {
			continue
		}

		daysLeft := int(row.Membership.EndDate.Sub(day).Hours() / 24)
		n := &models.Notification{
			GymID:    gymID,
			MemberID: memberID,
			Type:     models.NotificationTypeExpiryReminder,
			Channel:  models.NotificationChannelWhatsApp,
			Subject:  "Your membership is expiring soon",
			Body: fmt.Sprintf("Hi %s, your %s membership ends on %s (%d days left). Renew to keep training without a break!",
				row.MemberName, row.PlanName, row.Membership.EndDate.Format("02 Jan 2006"), daysLeft),
		}
		if err := q.repos.Notification.Create(n); err != nil {
			return queued, err
		}
		if err := q.Enqueue(n.ID); err != nil {
			// The row stays pending; RequeuePending picks it up later.
			log.Warnf("[Notify] Enqueue failed for %s: %v", n.ID, err)
			continue
		}
		queued++
	}
	return queued, nil
}
