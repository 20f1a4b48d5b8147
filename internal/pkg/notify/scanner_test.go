package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/testutil"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestScanExpiringCreatesDedupedReminders(t *testing.T) {
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	member := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")

	ledger := membership.NewService(db, clock.Fixed(testDay))
	start := clock.DateOf(testDay).AddDate(0, 0, -27) // ends in 3 days
	_, err := ledger.Create(gym.ID, membership.CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &start})
	require.NoError(t, err)

	repos := repository.NewRepositories(db)
	q := NewQueue(repos, 1)

	_, err = q.ScanExpiring(gym.ID, testDay, 7)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("gym_id = ? AND member_id = ? AND type = ?", gym.ID, member.ID, models.NotificationTypeExpiryReminder).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A second scan inside the dedupe window creates nothing new.
	queued, err := q.ScanExpiring(gym.ID, testDay, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, queued)

	require.NoError(t, db.Model(&models.Notification{}).
		Where("gym_id = ?", gym.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScanExpiringSkipsDistantExpiries(t *testing.T) {
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	member := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")

	ledger := membership.NewService(db, clock.Fixed(testDay))
	_, err := ledger.Create(gym.ID, membership.CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	q := NewQueue(repository.NewRepositories(db), 1)
	queued, err := q.ScanExpiring(gym.ID, testDay, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, queued)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
