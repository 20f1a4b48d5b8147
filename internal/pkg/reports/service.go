package reports

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
)

// Service computes the reporting views. Every method is a pure read over
// the committed ledger and payment state; nothing is cached, so results
// always reflect the latest writes. Dates are passed in explicitly so the
// same report can be reproduced for any day.
type Service struct {
	db *gorm.DB
}

// NewService creates a reporting service on the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DashboardStats is the owner's landing-page summary.
type DashboardStats struct {
	TotalMembers    int64           `json:"total_members"`
	ActiveMembers   int64           `json:"active_members"`
	ExpiringIn7Days int64           `json:"expiring_in_7_days"`
	InactiveMembers int64           `json:"inactive_members"`
	TodayCheckIns   int64           `json:"today_check_ins"`
	TodayCollection decimal.Decimal `json:"today_collection"`
	MembersWithDues int64           `json:"members_with_dues"`
	TotalDue        decimal.Decimal `json:"total_due"`
}

// Dashboard aggregates the headline numbers for one gym as of a date.
func (s *Service) Dashboard(gymID string, asOf time.Time) (*DashboardStats, error) {
	repos := repository.NewRepositories(s.db)
	day := clock.DateOf(asOf)

	totalMembers, err := repos.Member.CountActive(gymID)
	if err != nil {
		return nil, err
	}
	activeMembers, err := repos.Membership.CountDistinctMembersCurrent(gymID, day)
	if err != nil {
		return nil, err
	}
	expiring, err := repos.Membership.CountDistinctMembersExpiring(gymID, day, day.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	checkIns, err := repos.Attendance.CountBetween(gymID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	todaySum, err := repos.Payment.SumOnDate(gymID, day)
	if err != nil {
		return nil, err
	}
	duesMembers, duesTotal, err := repos.Membership.DuesTotals(gymID)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalMembers:    totalMembers,
		ActiveMembers:   activeMembers,
		ExpiringIn7Days: expiring,
		InactiveMembers: totalMembers - activeMembers,
		TodayCheckIns:   checkIns,
		TodayCollection: todaySum,
		MembersWithDues: duesMembers,
		TotalDue:        duesTotal,
	}, nil
}

// MembershipStats breaks the ledger down by effective status.
type MembershipStats struct {
	Active           int64 `json:"active"`
	Paused           int64 `json:"paused"`
	Expired          int64 `json:"expired"`
	ExpiringIn7Days  int64 `json:"expiring_in_7_days"`
	ExpiringIn30Days int64 `json:"expiring_in_30_days"`
}

// Memberships counts memberships by effective status as of a date. Active
// rows with a past end date count as expired even before the sweep has
// flipped them.
func (s *Service) Memberships(gymID string, asOf time.Time) (*MembershipStats, error) {
	repo := repository.NewMembershipRepository(s.db)
	day := clock.DateOf(asOf)

	active, err := repo.CountActiveCurrent(gymID, day)
	if err != nil {
		return nil, err
	}
	paused, err := repo.CountPaused(gymID)
	if err != nil {
		return nil, err
	}
	expired, err := repo.CountExpired(gymID, day)
	if err != nil {
		return nil, err
	}
	in7, err := repo.CountExpiringWithin(gymID, day, day.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	in30, err := repo.CountExpiringWithin(gymID, day, day.AddDate(0, 0, 30))
	if err != nil {
		return nil, err
	}

	return &MembershipStats{
		Active:           active,
		Paused:           paused,
		Expired:          expired,
		ExpiringIn7Days:  in7,
		ExpiringIn30Days: in30,
	}, nil
}

// CollectionReport summarizes payments over an inclusive date range. The
// per-day amounts always add up to TotalAmount; both come from the same
// committed rows.
type CollectionReport struct {
	FromDate    time.Time                    `json:"from_date"`
	ToDate      time.Time                    `json:"to_date"`
	TotalAmount decimal.Decimal              `json:"total_amount"`
	TotalCount  int64                        `json:"total_count"`
	ByMode      map[string]decimal.Decimal   `json:"by_mode"`
	Daily       []repository.DailyCollection `json:"daily"`
}

// Collection builds the collection report for [from, to].
func (s *Service) Collection(gymID string, from, to time.Time) (*CollectionReport, error) {
	repo := repository.NewPaymentRepository(s.db)
	fromDay, toDay := clock.DateOf(from), clock.DateOf(to)

	total, count, err := repo.CollectionTotals(gymID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	byMode, err := repo.SumByMode(gymID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	daily, err := repo.DailyBreakdown(gymID, fromDay, toDay)
	if err != nil {
		return nil, err
	}

	return &CollectionReport{
		FromDate:    fromDay,
		ToDate:      toDay,
		TotalAmount: total,
		TotalCount:  count,
		ByMode:      byMode,
		Daily:       daily,
	}, nil
}

// ExpiringMember is one row of the expiring-members report.
type ExpiringMember struct {
	MembershipID  string          `json:"membership_id"`
	MemberID      string          `json:"member_id"`
	MemberName    string          `json:"member_name"`
	MemberPhone   string          `json:"member_phone"`
	PlanName      string          `json:"plan_name"`
	EndDate       time.Time       `json:"end_date"`
	DaysRemaining int             `json:"days_remaining"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// ExpiringMembers lists active memberships ending within the next `days`
// days, soonest first.
func (s *Service) ExpiringMembers(gymID string, days int, asOf time.Time) ([]ExpiringMember, error) {
	day := clock.DateOf(asOf)
	rows, err := repository.NewMembershipRepository(s.db).
		ExpiringWithin(gymID, day, day.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}

	result := make([]ExpiringMember, 0, len(rows))
	for _, row := range rows {
		result = append(result, ExpiringMember{
			MembershipID:  row.Membership.ID,
			MemberID:      row.Membership.MemberID,
			MemberName:    row.MemberName,
			MemberPhone:   row.MemberPhone,
			PlanName:      row.PlanName,
			EndDate:       row.Membership.EndDate,
			DaysRemaining: int(row.Membership.EndDate.Sub(day).Hours() / 24),
			AmountDue:     row.Membership.AmountDue(),
		})
	}
	return result, nil
}

// MembersWithDues lists members owing money, largest balance first.
func (s *Service) MembersWithDues(gymID string) ([]repository.MemberDues, error) {
	return repository.NewMembershipRepository(s.db).DuesByMember(gymID)
}
