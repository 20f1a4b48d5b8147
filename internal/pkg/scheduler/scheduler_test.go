package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/pkg/notify"
	"github.com/activehq/activehq/internal/testutil"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestRunOnceSweepsAndRemindsPerGym(t *testing.T) {
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")

	lapsedMember := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	soonMember := testutil.SeedMember(t, db, gym.ID, "Vikram Shetty", "9876500000")
	laterMember := testutil.SeedMember(t, db, gym.ID, "Meera Iyer", "9876511111")

	ledger := membership.NewService(db, clock.Fixed(testDay))
	day := clock.DateOf(testDay)

	// Lapsed weeks ago; the sweep must flip it to expired.
	past := day.AddDate(0, 0, -60)
	lapsed, err := ledger.Create(gym.ID, membership.CreateInput{MemberID: lapsedMember.ID, PlanID: plan.ID, StartDate: &past})
	require.NoError(t, err)

	// Ends in 2 days; inside the reminder lead.
	soonStart := day.AddDate(0, 0, -28)
	_, err = ledger.Create(gym.ID, membership.CreateInput{MemberID: soonMember.ID, PlanID: plan.ID, StartDate: &soonStart})
	require.NoError(t, err)

	// Ends in 5 days; outside the 3-day lead, no reminder yet.
	laterStart := day.AddDate(0, 0, -25)
	_, err = ledger.Create(gym.ID, membership.CreateInput{MemberID: laterMember.ID, PlanID: plan.ID, StartDate: &laterStart})
	require.NoError(t, err)

	repos := repository.NewRepositories(db)
	q := notify.NewQueue(repos, 1)
	s := New(repos.Gym, ledger, q, clock.Fixed(testDay), time.Hour)

	s.RunOnce()

	swept, err := ledger.Get(gym.ID, lapsed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusExpired, swept.Status)

	var reminded []models.Notification
	require.NoError(t, db.Where("gym_id = ? AND type = ?", gym.ID, models.NotificationTypeExpiryReminder).
		Find(&reminded).Error)
	require.Len(t, reminded, 1)
	assert.Equal(t, soonMember.ID, reminded[0].MemberID)

	// A second run finds nothing new to sweep or remind.
	s.RunOnce()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("gym_id = ?", gym.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
