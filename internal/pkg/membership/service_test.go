package membership

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/testutil"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *models.Gym, *models.Member, *models.Plan) {
	t.Helper()
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	member := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")
	return NewService(db, clock.Fixed(testDay)), gym, member, plan
}

func TestCreateDefaults(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	today := clock.DateOf(testDay)
	assert.Equal(t, models.MembershipStatusActive, m.Status)
	assert.True(t, m.StartDate.Equal(today))
	assert.True(t, m.EndDate.Equal(today.AddDate(0, 0, 30)))
	assert.True(t, m.AmountTotal.Equal(decimal.RequireFromString("1500")))
	assert.True(t, m.AmountPaid.IsZero())
	assert.True(t, m.AmountDue().Equal(decimal.RequireFromString("1500")))
}

func TestCreateCopiesPlanPriceAtCreationTime(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	// Raising the plan price must not touch the membership.
	plan.Price = decimal.RequireFromString("1800")
	require.NoError(t, repository.NewPlanRepository(svc.db).Update(plan))

	reloaded, err := svc.Get(gym.ID, m.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AmountTotal.Equal(decimal.RequireFromString("1500")))
}

func TestCreateOverrides(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("1200")
	m, err := svc.Create(gym.ID, CreateInput{
		MemberID:    member.ID,
		PlanID:      plan.ID,
		StartDate:   &start,
		AmountTotal: &total,
		AmountPaid:  decimal.RequireFromString("500"),
	})
	require.NoError(t, err)

	assert.True(t, m.StartDate.Equal(start))
	assert.True(t, m.EndDate.Equal(start.AddDate(0, 0, 30)))
	assert.True(t, m.AmountTotal.Equal(total))
	assert.True(t, m.AmountDue().Equal(decimal.RequireFromString("700")))
}

func TestCreateValidation(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	_, err := svc.Create(gym.ID, CreateInput{MemberID: "missing", PlanID: plan.ID})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: "missing"})
	assert.ErrorIs(t, err, ErrPlanNotFound)

	require.NoError(t, repository.NewPlanRepository(svc.db).SetActive(gym.ID, plan.ID, false))
	_, err = svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	assert.ErrorIs(t, err, ErrPlanInactive)
}

func TestRenewChainsFromCurrentMembership(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	first, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	second, err := svc.Renew(gym.ID, member.ID, RenewInput{})
	require.NoError(t, err)

	assert.True(t, second.StartDate.Equal(first.EndDate.AddDate(0, 0, 1)))
	assert.True(t, second.EndDate.Equal(second.StartDate.AddDate(0, 0, 30)))
	assert.Equal(t, plan.ID, second.PlanID)
	assert.True(t, second.AmountTotal.Equal(decimal.RequireFromString("1500")))

	// Renewal is additive; the first membership is untouched.
	reloaded, err := svc.Get(gym.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusActive, reloaded.Status)
}

func TestRenewWithoutHistoryStartsToday(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Renew(gym.ID, member.ID, RenewInput{PlanID: plan.ID})
	require.NoError(t, err)
	assert.True(t, m.StartDate.Equal(clock.DateOf(testDay)))
}

func TestRenewWithoutPlanOrHistoryFails(t *testing.T) {
	svc, gym, member, _ := newTestService(t)

	_, err := svc.Renew(gym.ID, member.ID, RenewInput{})
	assert.ErrorIs(t, err, ErrNoPlanAvailable)
}

func TestRenewAllowsRetiredPlan(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	_, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	// Retiring the plan blocks new sales, not renewals.
	require.NoError(t, repository.NewPlanRepository(svc.db).SetActive(gym.ID, plan.ID, false))

	_, err = svc.Renew(gym.ID, member.ID, RenewInput{})
	assert.NoError(t, err)
}

func TestPauseResume(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)
	endBefore := m.EndDate

	paused, err := svc.Pause(gym.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusPaused, paused.Status)

	// Pausing twice is an invalid transition.
	_, err = svc.Pause(gym.ID, m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := svc.Resume(gym.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusActive, resumed.Status)
	// Paused time is not banked; the end date stays put.
	assert.True(t, resumed.EndDate.Equal(endBefore))

	_, err = svc.Resume(gym.ID, m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(gym.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusCancelled, cancelled.Status)

	// Cancelling again succeeds without changing anything.
	again, err := svc.Cancel(gym.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusCancelled, again.Status)

	// Cancelled is terminal: no pause, no resume.
	_, err = svc.Pause(gym.ID, m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Resume(gym.ID, m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelFromPaused(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)
	_, err = svc.Pause(gym.ID, m.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(gym.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusCancelled, cancelled.Status)
}

func TestExpireSweepIsIdempotent(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	past := clock.DateOf(testDay).AddDate(0, 0, -60)
	stale, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &past})
	require.NoError(t, err)

	fresh, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	moved, err := svc.ExpireSweep(gym.ID, testDay)
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved)

	moved, err = svc.ExpireSweep(gym.ID, testDay)
	require.NoError(t, err)
	assert.Equal(t, int64(0), moved)

	expired, err := svc.Get(gym.ID, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusExpired, expired.Status)

	kept, err := svc.Get(gym.ID, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipStatusActive, kept.Status)
}

func TestExpireSweepLeavesPausedAndCancelled(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	past := clock.DateOf(testDay).AddDate(0, 0, -60)
	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &past})
	require.NoError(t, err)
	_, err = svc.Pause(gym.ID, m.ID)
	require.NoError(t, err)

	moved, err := svc.ExpireSweep(gym.ID, testDay)
	require.NoError(t, err)
	assert.Equal(t, int64(0), moved)
}

func TestCurrentActiveTieBreak(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	start := clock.DateOf(testDay).AddDate(0, 0, -5)
	_, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &start})
	require.NoError(t, err)

	laterStart := clock.DateOf(testDay)
	longer, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &laterStart})
	require.NoError(t, err)

	current, err := svc.CurrentActive(gym.ID, member.ID, testDay)
	require.NoError(t, err)
	assert.Equal(t, longer.ID, current.ID)
}

func TestCurrentActiveIgnoresLapsedRows(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	past := clock.DateOf(testDay).AddDate(0, 0, -60)
	_, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &past})
	require.NoError(t, err)

	_, err = svc.CurrentActive(gym.ID, member.ID, testDay)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
}

func TestTenantIsolation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewService(db, clock.Fixed(testDay))

	gymA := testutil.SeedGym(t, db, "Gym A")
	gymB := testutil.SeedGym(t, db, "Gym B")
	memberA := testutil.SeedMember(t, db, gymA.ID, "Asha Rao", "9876543210")
	planA := testutil.SeedPlan(t, db, gymA.ID, "Monthly", 30, "1500")

	m, err := svc.Create(gymA.ID, CreateInput{MemberID: memberA.ID, PlanID: planA.ID})
	require.NoError(t, err)

	// Gym B sees gym A's data exactly like absent data.
	_, err = svc.Get(gymB.ID, m.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
	_, err = svc.Pause(gymB.ID, m.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
	_, err = svc.Create(gymB.ID, CreateInput{MemberID: memberA.ID, PlanID: planA.ID})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	// And gym B's sweep never touches gym A's rows.
	past := clock.DateOf(testDay).AddDate(0, 0, -60)
	_, err = svc.Create(gymA.ID, CreateInput{MemberID: memberA.ID, PlanID: planA.ID, StartDate: &past})
	require.NoError(t, err)
	moved, err := svc.ExpireSweep(gymB.ID, testDay)
	require.NoError(t, err)
	assert.Equal(t, int64(0), moved)
}

func TestEffectiveStatusBeforeSweep(t *testing.T) {
	svc, gym, member, plan := newTestService(t)

	past := clock.DateOf(testDay).AddDate(0, 0, -60)
	m, err := svc.Create(gym.ID, CreateInput{MemberID: member.ID, PlanID: plan.ID, StartDate: &past})
	require.NoError(t, err)

	// The stored status is still active, but every read through
	// EffectiveStatus already reports expired.
	assert.Equal(t, models.MembershipStatusActive, m.Status)
	assert.Equal(t, models.MembershipStatusExpired, m.EffectiveStatus(testDay))
}
