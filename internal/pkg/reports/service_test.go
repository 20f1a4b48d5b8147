package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/internal/pkg/attendance"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/pkg/payments"
	"github.com/activehq/activehq/internal/testutil"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type reportFixture struct {
	db      *gorm.DB
	svc     *Service
	ledger  *membership.Service
	paysvc  *payments.Service
	gym     *models.Gym
	plan    *models.Plan
	members []*models.Member
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")

	members := []*models.Member{
		testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210"),
		testutil.SeedMember(t, db, gym.ID, "Vikram Shetty", "9876500000"),
		testutil.SeedMember(t, db, gym.ID, "Meera Iyer", "9876511111"),
	}

	return &reportFixture{
		db:      db,
		svc:     NewService(db),
		ledger:  membership.NewService(db, clock.Fixed(testDay)),
		paysvc:  payments.NewService(db, clock.Fixed(testDay)),
		gym:     gym,
		plan:    plan,
		members: members,
	}
}

func TestCollectionTotalEqualsDailySum(t *testing.T) {
	f := newReportFixture(t)

	day := clock.DateOf(testDay)
	for i, amount := range []string{"100", "250", "400", "250"} {
		paymentDay := day.AddDate(0, 0, -(i % 3))
		_, err := f.paysvc.Record(f.gym.ID, payments.RecordInput{
			MemberID:    f.members[0].ID,
			Amount:      decimal.RequireFromString(amount),
			PaymentMode: models.PaymentModeCash,
			PaymentDate: &paymentDay,
		})
		require.NoError(t, err)
	}

	report, err := f.svc.Collection(f.gym.ID, day.AddDate(0, 0, -7), day)
	require.NoError(t, err)

	assert.True(t, report.TotalAmount.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, int64(4), report.TotalCount)

	dailySum := decimal.Zero
	var dailyCount int64
	for _, d := range report.Daily {
		dailySum = dailySum.Add(d.Amount)
		dailyCount += d.Count
	}
	assert.True(t, dailySum.Equal(report.TotalAmount))
	assert.Equal(t, report.TotalCount, dailyCount)

	modeSum := decimal.Zero
	for _, amount := range report.ByMode {
		modeSum = modeSum.Add(amount)
	}
	assert.True(t, modeSum.Equal(report.TotalAmount))
}

func TestCollectionRangeExcludesOutsidePayments(t *testing.T) {
	f := newReportFixture(t)

	day := clock.DateOf(testDay)
	outside := day.AddDate(0, 0, -30)
	for _, paymentDay := range []time.Time{day, outside} {
		d := paymentDay
		_, err := f.paysvc.Record(f.gym.ID, payments.RecordInput{
			MemberID:    f.members[0].ID,
			Amount:      decimal.RequireFromString("500"),
			PaymentMode: models.PaymentModeUPI,
			PaymentDate: &d,
		})
		require.NoError(t, err)
	}

	report, err := f.svc.Collection(f.gym.ID, day.AddDate(0, 0, -7), day)
	require.NoError(t, err)
	assert.True(t, report.TotalAmount.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, int64(1), report.TotalCount)
	assert.Len(t, report.Daily, 1)
}

func TestMembershipStats(t *testing.T) {
	f := newReportFixture(t)
	day := clock.DateOf(testDay)

	// Current active membership.
	_, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID})
	require.NoError(t, err)

	// Paused membership.
	paused, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[1].ID, PlanID: f.plan.ID})
	require.NoError(t, err)
	_, err = f.ledger.Pause(f.gym.ID, paused.ID)
	require.NoError(t, err)

	// Lapsed but not yet swept: stored active, past end date.
	past := day.AddDate(0, 0, -60)
	_, err = f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[2].ID, PlanID: f.plan.ID, StartDate: &past})
	require.NoError(t, err)

	stats, err := f.svc.Memberships(f.gym.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(1), stats.Paused)
	assert.Equal(t, int64(1), stats.Expired)

	// After the sweep the counts do not change; the lapsed row just moves
	// from the date-comparison half of the condition to the stored half.
	_, err = f.ledger.ExpireSweep(f.gym.ID, day)
	require.NoError(t, err)
	stats, err = f.svc.Memberships(f.gym.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Expired)
}

func TestExpiringMembersReport(t *testing.T) {
	f := newReportFixture(t)
	day := clock.DateOf(testDay)

	// Ends in 3 days.
	startSoon := day.AddDate(0, 0, -27)
	_, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID, StartDate: &startSoon})
	require.NoError(t, err)

	// Ends in 29 days; outside a 7-day window.
	startLate := day.AddDate(0, 0, -1)
	_, err = f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[1].ID, PlanID: f.plan.ID, StartDate: &startLate})
	require.NoError(t, err)

	rows, err := f.svc.ExpiringMembers(f.gym.ID, 7, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.members[0].ID, rows[0].MemberID)
	assert.Equal(t, "Asha Rao", rows[0].MemberName)
	assert.Equal(t, "Monthly", rows[0].PlanName)
	assert.Equal(t, 3, rows[0].DaysRemaining)

	rows, err = f.svc.ExpiringMembers(f.gym.ID, 30, day)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Soonest expiry first.
	assert.Equal(t, f.members[0].ID, rows[0].MemberID)
}

func TestMembersWithDues(t *testing.T) {
	f := newReportFixture(t)

	// Member 0 owes 500 across one membership.
	m0, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID})
	require.NoError(t, err)
	_, err = f.paysvc.Record(f.gym.ID, payments.RecordInput{
		MemberID:     f.members[0].ID,
		MembershipID: &m0.ID,
		Amount:       decimal.RequireFromString("1000"),
		PaymentMode:  models.PaymentModeCash,
	})
	require.NoError(t, err)

	// Member 1 is fully paid.
	m1, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[1].ID, PlanID: f.plan.ID})
	require.NoError(t, err)
	_, err = f.paysvc.Record(f.gym.ID, payments.RecordInput{
		MemberID:     f.members[1].ID,
		MembershipID: &m1.ID,
		Amount:       decimal.RequireFromString("1500"),
		PaymentMode:  models.PaymentModeUPI,
	})
	require.NoError(t, err)

	// Member 2 owes the full 1500.
	_, err = f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[2].ID, PlanID: f.plan.ID})
	require.NoError(t, err)

	rows, err := f.svc.MembersWithDues(f.gym.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Largest balance first.
	assert.Equal(t, f.members[2].ID, rows[0].MemberID)
	assert.True(t, rows[0].TotalDue.Equal(decimal.RequireFromString("1500")))
	assert.Equal(t, f.members[0].ID, rows[1].MemberID)
	assert.True(t, rows[1].TotalDue.Equal(decimal.RequireFromString("500")))

	// latest_end comes back from an aggregate and must survive the scan.
	endDate := clock.DateOf(testDay).AddDate(0, 0, 30)
	assert.True(t, rows[0].LatestEnd.Equal(endDate), "got %s", rows[0].LatestEnd)
	assert.True(t, rows[1].LatestEnd.Equal(endDate), "got %s", rows[1].LatestEnd)
}

func TestCancellingDoesNotForgiveDues(t *testing.T) {
	f := newReportFixture(t)
	day := clock.DateOf(testDay)

	m, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID})
	require.NoError(t, err)
	_, err = f.paysvc.Record(f.gym.ID, payments.RecordInput{
		MemberID:     f.members[0].ID,
		MembershipID: &m.ID,
		Amount:       decimal.RequireFromString("400"),
		PaymentMode:  models.PaymentModeCash,
	})
	require.NoError(t, err)

	_, err = f.ledger.Cancel(f.gym.ID, m.ID)
	require.NoError(t, err)

	rows, err := f.svc.MembersWithDues(f.gym.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.members[0].ID, rows[0].MemberID)
	assert.True(t, rows[0].TotalDue.Equal(decimal.RequireFromString("1100")))

	stats, err := f.svc.Dashboard(f.gym.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.MembersWithDues)
	assert.True(t, stats.TotalDue.Equal(decimal.RequireFromString("1100")))
}

func TestDashboard(t *testing.T) {
	f := newReportFixture(t)
	day := clock.DateOf(testDay)

	// One covered member, one lapsed, one with no membership at all.
	_, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID})
	require.NoError(t, err)
	past := day.AddDate(0, 0, -60)
	_, err = f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[1].ID, PlanID: f.plan.ID, StartDate: &past})
	require.NoError(t, err)

	_, err = f.paysvc.Record(f.gym.ID, payments.RecordInput{
		MemberID:    f.members[0].ID,
		Amount:      decimal.RequireFromString("750"),
		PaymentMode: models.PaymentModeCash,
	})
	require.NoError(t, err)

	att := attendance.NewService(f.db, clock.Fixed(testDay))
	_, err = att.CheckIn(f.gym.ID, f.members[0].ID, "")
	require.NoError(t, err)

	stats, err := f.svc.Dashboard(f.gym.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalMembers)
	assert.Equal(t, int64(1), stats.ActiveMembers)
	assert.Equal(t, int64(2), stats.InactiveMembers)
	assert.Equal(t, int64(1), stats.TodayCheckIns)
	assert.True(t, stats.TodayCollection.Equal(decimal.RequireFromString("750")))
	assert.Equal(t, int64(2), stats.MembersWithDues)
	assert.True(t, stats.TotalDue.Equal(decimal.RequireFromString("3000")))
}

func TestReportsAreTenantScoped(t *testing.T) {
	f := newReportFixture(t)
	day := clock.DateOf(testDay)

	_, err := f.ledger.Create(f.gym.ID, membership.CreateInput{MemberID: f.members[0].ID, PlanID: f.plan.ID})
	require.NoError(t, err)

	gymB := testutil.SeedGym(t, f.db, "Gym B")
	stats, err := f.svc.Dashboard(gymB.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalMembers)
	assert.Equal(t, int64(0), stats.ActiveMembers)
	assert.True(t, stats.TodayCollection.IsZero())
	assert.Equal(t, int64(0), stats.MembersWithDues)
}
