package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/testutil"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *models.Gym, *models.Member) {
	t.Helper()
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	member := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	return NewService(db, clock.Fixed(testDay)), gym, member
}

func TestCheckInAndOut(t *testing.T) {
	svc, gym, member := newTestService(t)

	visit, err := svc.CheckIn(gym.ID, member.ID, "")
	require.NoError(t, err)
	assert.Nil(t, visit.CheckOutTime)

	closed, err := svc.CheckOut(gym.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOutTime)
	assert.Equal(t, visit.ID, closed.ID)
}

func TestDoubleCheckInRejected(t *testing.T) {
	svc, gym, member := newTestService(t)

	_, err := svc.CheckIn(gym.ID, member.ID, "")
	require.NoError(t, err)

	_, err = svc.CheckIn(gym.ID, member.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	// After checking out the member can come back.
	_, err = svc.CheckOut(gym.ID, member.ID)
	require.NoError(t, err)
	_, err = svc.CheckIn(gym.ID, member.ID, "")
	assert.NoError(t, err)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc, gym, member := newTestService(t)

	_, err := svc.CheckOut(gym.ID, member.ID)
	assert.ErrorIs(t, err, ErrNoOpenCheckIn)
}

func TestCheckInValidation(t *testing.T) {
	svc, gym, member := newTestService(t)

	_, err := svc.CheckIn(gym.ID, "missing", "")
	assert.ErrorIs(t, err, ErrMemberNotFound)

	require.NoError(t, repository.NewMemberRepository(svc.db).SetActive(gym.ID, member.ID, false))
	_, err = svc.CheckIn(gym.ID, member.ID, "")
	assert.ErrorIs(t, err, ErrMemberDeactivated)
}

func TestListForDay(t *testing.T) {
	svc, gym, member := newTestService(t)

	_, err := svc.CheckIn(gym.ID, member.ID, "")
	require.NoError(t, err)

	visits, total, err := svc.ListForDay(gym.ID, testDay, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, visits, 1)

	// A different day is empty.
	_, total, err = svc.ListForDay(gym.ID, testDay.AddDate(0, 0, -1), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
