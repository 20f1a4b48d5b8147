package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/internal/pkg/clock"
)

// membershipRepository implements the MembershipRepository interface
type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository instance
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create creates a new membership row
func (r *membershipRepository) Create(m *models.Membership) error {
	return r.db.Create(m).Error
}

// GetByID retrieves a membership by id within the gym
func (r *membershipRepository) GetByID(gymID, id string) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Where("gym_id = ? AND id = ?", gymID, id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List retrieves memberships optionally filtered by stored status
func (r *membershipRepository) List(gymID, status string, page, pageSize int) ([]models.Membership, int64, error) {
	query := r.db.Model(&models.Membership{}).Where("gym_id = ?", gymID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var memberships []models.Membership
	err := query.Order("end_date DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&memberships).Error
	if err != nil {
		return nil, 0, err
	}
	return memberships, total, nil
}

// ListByMember retrieves a member's full membership history, newest first
func (r *membershipRepository) ListByMember(gymID, memberID string) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("gym_id = ? AND member_id = ?", gymID, memberID).
		Order("end_date DESC, id DESC").
		Find(&memberships).Error
	return memberships, err
}

// CurrentActive returns the membership currently covering the member. With
// overlapping rows the one ending last wins; id breaks remaining ties.
func (r *membershipRepository) CurrentActive(gymID, memberID string, asOf time.Time) (*models.Membership, error) {
	var m models.Membership
	err := r.db.Where("gym_id = ? AND member_id = ? AND status = ? AND end_date >= ?",
		gymID, memberID, models.MembershipStatusActive, clock.DateOf(asOf)).
		Order("end_date DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateStatusFrom moves the row to the target status only when its current
// status is one of the expected values. The WHERE clause carries the guard,
// so concurrent transitions race safely: exactly one wins.
func (r *membershipRepository) UpdateStatusFrom(gymID, id string, from []string, to string) (bool, error) {
	res := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND id = ? AND status IN ?", gymID, id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireBefore flips every active membership that ended before asOf to
// expired in one conditional UPDATE. Re-running it matches nothing.
func (r *membershipRepository) ExpireBefore(gymID string, asOf time.Time) (int64, error) {
	res := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND status = ? AND end_date < ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf)).
		Update("status", models.MembershipStatusExpired)
	return res.RowsAffected, res.Error
}

// IncrementPaid adds amount to amount_paid as a SQL expression so that
// concurrent payments against the same membership both land.
func (r *membershipRepository) IncrementPaid(gymID, id string, amount decimal.Decimal) (bool, error) {
	res := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND id = ?", gymID, id).
		Update("amount_paid", gorm.Expr("amount_paid + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountActiveCurrent counts active memberships still covering asOf
func (r *membershipRepository) CountActiveCurrent(gymID string, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND status = ? AND end_date >= ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf)).
		Count(&count).Error
	return count, err
}

// CountPaused counts paused memberships
func (r *membershipRepository) CountPaused(gymID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND status = ?", gymID, models.MembershipStatusPaused).
		Count(&count).Error
	return count, err
}

// CountExpired counts memberships that are expired as of the given date,
// including active rows the sweep has not reached yet.
func (r *membershipRepository) CountExpired(gymID string, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("gym_id = ?", gymID).
		Where("status = ? OR (status = ? AND end_date < ?)",
			models.MembershipStatusExpired, models.MembershipStatusActive, clock.DateOf(asOf)).
		Count(&count).Error
	return count, err
}

// CountExpiringWithin counts active memberships ending inside [asOf, until]
func (r *membershipRepository) CountExpiringWithin(gymID string, asOf, until time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Where("gym_id = ? AND status = ? AND end_date >= ? AND end_date <= ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf), clock.DateOf(until)).
		Count(&count).Error
	return count, err
}

// CountDistinctMembersCurrent counts members holding at least one current
// active membership.
func (r *membershipRepository) CountDistinctMembersCurrent(gymID string, asOf time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Distinct("member_id").
		Where("gym_id = ? AND status = ? AND end_date >= ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf)).
		Count(&count).Error
	return count, err
}

// CountDistinctMembersExpiring counts members whose coverage ends inside
// [asOf, until].
func (r *membershipRepository) CountDistinctMembersExpiring(gymID string, asOf, until time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Membership{}).
		Distinct("member_id").
		Where("gym_id = ? AND status = ? AND end_date >= ? AND end_date <= ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf), clock.DateOf(until)).
		Count(&count).Error
	return count, err
}

// expiringRow is the flat scan target for the expiring-members join.
type expiringRow struct {
	models.Membership
	MemberName  string
	MemberPhone string
	PlanName    string
}

// ExpiringWithin returns active memberships ending inside [asOf, until]
// joined with member and plan details, soonest ending first.
func (r *membershipRepository) ExpiringWithin(gymID string, asOf, until time.Time) ([]ExpiringMembership, error) {
	var rows []expiringRow
	err := r.db.Model(&models.Membership{}).
		Select("memberships.*, members.name AS member_name, members.phone AS member_phone, plans.name AS plan_name").
		Joins("JOIN members ON members.id = memberships.member_id").
		Joins("JOIN plans ON plans.id = memberships.plan_id").
		Where("memberships.gym_id = ? AND memberships.status = ? AND memberships.end_date >= ? AND memberships.end_date <= ?",
			gymID, models.MembershipStatusActive, clock.DateOf(asOf), clock.DateOf(until)).
		Order("memberships.end_date, memberships.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]ExpiringMembership, 0, len(rows))
	for _, row := range rows {
		result = append(result, ExpiringMembership{
			Membership:  row.Membership,
			MemberName:  row.MemberName,
			MemberPhone: row.MemberPhone,
			PlanName:    row.PlanName,
		})
	}
	return result, nil
}

// duesRow is the flat scan target for the dues aggregation. MAX() strips
// the column's declared date type on sqlite, so latest_end arrives as text
// and is parsed after the scan.
type duesRow struct {
	MemberID    string
	MemberName  string
	MemberPhone string
	TotalDue    decimal.Decimal
	LatestEnd   string
}

// latestEndLayouts covers the textual forms the drivers hand back for an
// aggregated date column.
var latestEndLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseLatestEnd(raw string) time.Time {
	for _, layout := range latestEndLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DuesByMember aggregates outstanding balances per member across rows with
// something still owed. Every row counts, cancelled ones included;
// cancelling a membership does not clear its balance. The subtraction keeps
// the comparison numeric on every backend regardless of how the decimal
// columns are stored.
func (r *membershipRepository) DuesByMember(gymID string) ([]MemberDues, error) {
	var rows []duesRow
	err := r.db.Model(&models.Membership{}).
		Select("memberships.member_id AS member_id, members.name AS member_name, members.phone AS member_phone, "+
			"SUM(memberships.amount_total - memberships.amount_paid) AS total_due, MAX(memberships.end_date) AS latest_end").
		Joins("JOIN members ON members.id = memberships.member_id").
		Where("memberships.gym_id = ? AND (memberships.amount_total - memberships.amount_paid) > 0", gymID).
		Group("memberships.member_id, members.name, members.phone").
		Order("total_due DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]MemberDues, 0, len(rows))
	for _, row := range rows {
		result = append(result, MemberDues{
			MemberID:    row.MemberID,
			MemberName:  row.MemberName,
			MemberPhone: row.MemberPhone,
			TotalDue:    row.TotalDue,
			LatestEnd:   parseLatestEnd(row.LatestEnd),
		})
	}
	return result, nil
}

// DuesTotals returns how many members owe money and the grand total owed
func (r *membershipRepository) DuesTotals(gymID string) (int64, decimal.Decimal, error) {
	var row struct {
		Members  int64
		TotalDue decimal.Decimal
	}
	err := r.db.Model(&models.Membership{}).
		Select("COUNT(DISTINCT member_id) AS members, COALESCE(SUM(amount_total - amount_paid), 0) AS total_due").
		Where("gym_id = ? AND (amount_total - amount_paid) > 0", gymID).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.Members, row.TotalDue, nil
}
