package payments

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
	"github.com/activehq/activehq/internal/pkg/membership"
	"github.com/activehq/activehq/internal/testutil"
	"gorm.io/gorm"
)

var testDay = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type paymentFixture struct {
	db         *gorm.DB
	svc        *Service
	ledger     *membership.Service
	gym        *models.Gym
	member     *models.Member
	membership *models.Membership
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	gym := testutil.SeedGym(t, db, "Iron Temple")
	member := testutil.SeedMember(t, db, gym.ID, "Asha Rao", "9876543210")
	plan := testutil.SeedPlan(t, db, gym.ID, "Monthly", 30, "1500")

	ledger := membership.NewService(db, clock.Fixed(testDay))
	m, err := ledger.Create(gym.ID, membership.CreateInput{MemberID: member.ID, PlanID: plan.ID})
	require.NoError(t, err)

	return &paymentFixture{
		db:         db,
		svc:        NewService(db, clock.Fixed(testDay)),
		ledger:     ledger,
		gym:        gym,
		member:     member,
		membership: m,
	}
}

func (f *paymentFixture) reload(t *testing.T) *models.Membership {
	t.Helper()
	m, err := f.ledger.Get(f.gym.ID, f.membership.ID)
	require.NoError(t, err)
	return m
}

func TestRecordLinkedPaymentUpdatesLedger(t *testing.T) {
	f := newPaymentFixture(t)

	p, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:     f.member.ID,
		MembershipID: &f.membership.ID,
		Amount:       decimal.RequireFromString("1000"),
		PaymentMode:  models.PaymentModeUPI,
	})
	require.NoError(t, err)
	assert.True(t, p.PaymentDate.Equal(clock.DateOf(testDay)))

	m := f.reload(t)
	assert.True(t, m.AmountPaid.Equal(decimal.RequireFromString("1000")))
	assert.True(t, m.AmountDue().Equal(decimal.RequireFromString("500")))
}

func TestSequentialPaymentsBothLand(t *testing.T) {
	f := newPaymentFixture(t)

	for _, amount := range []string{"600", "400", "300"} {
		_, err := f.svc.Record(f.gym.ID, RecordInput{
			MemberID:     f.member.ID,
			MembershipID: &f.membership.ID,
			Amount:       decimal.RequireFromString(amount),
			PaymentMode:  models.PaymentModeCash,
		})
		require.NoError(t, err)
	}

	m := f.reload(t)
	assert.True(t, m.AmountPaid.Equal(decimal.RequireFromString("1300")))
	assert.True(t, m.AmountDue().Equal(decimal.RequireFromString("200")))
}

func TestConcurrentLinkedPaymentsAllLand(t *testing.T) {
	f := newPaymentFixture(t)

	const workers = 5
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Record(f.gym.ID, RecordInput{
				MemberID:     f.member.ID,
				MembershipID: &f.membership.ID,
				Amount:       decimal.RequireFromString("300"),
				PaymentMode:  models.PaymentModeUPI,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// amount_paid is incremented in SQL, so no update can overwrite another.
	m := f.reload(t)
	assert.True(t, m.AmountPaid.Equal(decimal.RequireFromString("1500")), "got %s", m.AmountPaid)

	rows, err := f.svc.ListByMember(f.gym.ID, f.member.ID)
	require.NoError(t, err)
	assert.Len(t, rows, workers)
}

func TestOverpaymentYieldsNegativeDue(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:     f.member.ID,
		MembershipID: &f.membership.ID,
		Amount:       decimal.RequireFromString("2000"),
		PaymentMode:  models.PaymentModeCard,
	})
	require.NoError(t, err)

	m := f.reload(t)
	assert.True(t, m.AmountDue().Equal(decimal.RequireFromString("-500")))
}

func TestTaxDoesNotFeedLedger(t *testing.T) {
	f := newPaymentFixture(t)

	p, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:     f.member.ID,
		MembershipID: &f.membership.ID,
		Amount:       decimal.RequireFromString("1000"),
		TaxAmount:    decimal.RequireFromString("180"),
		PaymentMode:  models.PaymentModeUPI,
	})
	require.NoError(t, err)
	assert.True(t, p.TotalAmount().Equal(decimal.RequireFromString("1180")))

	m := f.reload(t)
	assert.True(t, m.AmountPaid.Equal(decimal.RequireFromString("1000")))
}

func TestBadMembershipLinkRollsBackPayment(t *testing.T) {
	f := newPaymentFixture(t)

	missing := "does-not-exist"
	_, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:     f.member.ID,
		MembershipID: &missing,
		Amount:       decimal.RequireFromString("1000"),
		PaymentMode:  models.PaymentModeCash,
	})
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	// The insert rolled back with the failed increment; no orphan row.
	rows, err := f.svc.ListByMember(f.gym.ID, f.member.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordValidation(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:    f.member.ID,
		Amount:      decimal.Zero,
		PaymentMode: models.PaymentModeCash,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.Record(f.gym.ID, RecordInput{
		MemberID:    f.member.ID,
		Amount:      decimal.RequireFromString("100"),
		TaxAmount:   decimal.RequireFromString("-1"),
		PaymentMode: models.PaymentModeCash,
	})
	assert.ErrorIs(t, err, ErrNegativeTax)

	_, err = f.svc.Record(f.gym.ID, RecordInput{
		MemberID:    f.member.ID,
		Amount:      decimal.RequireFromString("100"),
		PaymentMode: "barter",
	})
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = f.svc.Record(f.gym.ID, RecordInput{
		MemberID:    "missing",
		Amount:      decimal.RequireFromString("100"),
		PaymentMode: models.PaymentModeCash,
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUnlinkedPaymentLeavesLedgerAlone(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Record(f.gym.ID, RecordInput{
		MemberID:    f.member.ID,
		Amount:      decimal.RequireFromString("250"),
		PaymentMode: models.PaymentModeCash,
	})
	require.NoError(t, err)

	m := f.reload(t)
	assert.True(t, m.AmountPaid.IsZero())
}

func TestListTotalsCoverWholeFilteredSet(t *testing.T) {
	f := newPaymentFixture(t)

	for i, amount := range []string{"100", "200", "300", "400", "500"} {
		day := clock.DateOf(testDay).AddDate(0, 0, -i)
		_, err := f.svc.Record(f.gym.ID, RecordInput{
			MemberID:    f.member.ID,
			Amount:      decimal.RequireFromString(amount),
			PaymentMode: models.PaymentModeCash,
			PaymentDate: &day,
		})
		require.NoError(t, err)
	}

	// Page of two, but count and sum span all five rows.
	rows, total, sum, err := f.svc.List(f.gym.ID, repository.PaymentFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(5), total)
	assert.True(t, sum.Equal(decimal.RequireFromString("1500")))
}

func TestDailyCollectionSummary(t *testing.T) {
	f := newPaymentFixture(t)

	day := clock.DateOf(testDay)
	yesterday := day.AddDate(0, 0, -1)
	for _, p := range []RecordInput{
		{MemberID: f.member.ID, Amount: decimal.RequireFromString("100"), PaymentMode: models.PaymentModeCash, PaymentDate: &day},
		{MemberID: f.member.ID, Amount: decimal.RequireFromString("200"), PaymentMode: models.PaymentModeUPI, PaymentDate: &day},
		{MemberID: f.member.ID, Amount: decimal.RequireFromString("400"), PaymentMode: models.PaymentModeCash, PaymentDate: &yesterday},
	} {
		_, err := f.svc.Record(f.gym.ID, p)
		require.NoError(t, err)
	}

	summary, err := f.svc.DailyCollection(f.gym.ID, testDay)
	require.NoError(t, err)
	assert.True(t, summary.Date.Equal(day))
	assert.True(t, summary.TotalAmount.Equal(decimal.RequireFromString("300")))
	assert.Equal(t, int64(2), summary.TotalCount)
	assert.True(t, summary.ByMode[models.PaymentModeCash].Equal(decimal.RequireFromString("100")))
	assert.True(t, summary.ByMode[models.PaymentModeUPI].Equal(decimal.RequireFromString("200")))
}

func TestListFilters(t *testing.T) {
	f := newPaymentFixture(t)
	other := testutil.SeedMember(t, f.db, f.gym.ID, "Vikram Shetty", "9876500000")

	day := clock.DateOf(testDay)
	earlier := day.AddDate(0, 0, -10)
	for _, p := range []RecordInput{
		{MemberID: f.member.ID, Amount: decimal.RequireFromString("100"), PaymentMode: models.PaymentModeCash, PaymentDate: &day},
		{MemberID: f.member.ID, Amount: decimal.RequireFromString("200"), PaymentMode: models.PaymentModeUPI, PaymentDate: &earlier},
		{MemberID: other.ID, Amount: decimal.RequireFromString("400"), PaymentMode: models.PaymentModeCash, PaymentDate: &day},
	} {
		_, err := f.svc.Record(f.gym.ID, p)
		require.NoError(t, err)
	}

	_, total, sum, err := f.svc.List(f.gym.ID, repository.PaymentFilter{MemberID: f.member.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, sum.Equal(decimal.RequireFromString("300")))

	_, total, sum, err = f.svc.List(f.gym.ID, repository.PaymentFilter{Mode: models.PaymentModeCash}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, sum.Equal(decimal.RequireFromString("500")))

	from := day.AddDate(0, 0, -1)
	_, total, sum, err = f.svc.List(f.gym.ID, repository.PaymentFilter{FromDate: &from}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, sum.Equal(decimal.RequireFromString("500")))
}

func TestPaymentTenantIsolation(t *testing.T) {
	f := newPaymentFixture(t)
	gymB := testutil.SeedGym(t, f.db, "Gym B")

	// Gym B cannot pay against gym A's member or membership.
	_, err := f.svc.Record(gymB.ID, RecordInput{
		MemberID:    f.member.ID,
		Amount:      decimal.RequireFromString("100"),
		PaymentMode: models.PaymentModeCash,
	})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
