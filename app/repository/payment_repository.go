package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/internal/pkg/clock"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a payment row. Callers pairing the insert with a ledger
// increment construct the repository over the transaction handle.
func (r *paymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

// GetByID retrieves a payment by id within the gym
func (r *paymentRepository) GetByID(gymID, id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("gym_id = ? AND id = ?", gymID, id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) filtered(gymID string, f PaymentFilter) *gorm.DB {
	query := r.db.Model(&models.Payment{}).Where("gym_id = ?", gymID)
	if f.MemberID != "" {
		query = query.Where("member_id = ?", f.MemberID)
	}
	if f.FromDate != nil {
		query = query.Where("payment_date >= ?", clock.DateOf(*f.FromDate))
	}
	if f.ToDate != nil {
		query = query.Where("payment_date <= ?", clock.DateOf(*f.ToDate))
	}
	if f.Mode != "" {
		query = query.Where("payment_mode = ?", f.Mode)
	}
	return query
}

// List returns the requested page together with the count and amount sum
// over the whole filtered set.
func (r *paymentRepository) List(gymID string, f PaymentFilter, page, pageSize int) ([]models.Payment, int64, decimal.Decimal, error) {
	var total int64
	if err := r.filtered(gymID, f).Count(&total).Error; err != nil {
		return nil, 0, decimal.Zero, err
	}

	var sum struct {
		Total decimal.Decimal
	}
	if err := r.filtered(gymID, f).
		Select("COALESCE(SUM(amount + 0), 0) AS total").
		Scan(&sum).Error; err != nil {
		return nil, 0, decimal.Zero, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var payments []models.Payment
	err := r.filtered(gymID, f).
		Order("payment_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&payments).Error
	if err != nil {
		return nil, 0, decimal.Zero, err
	}
	return payments, total, sum.Total, nil
}

// ListByMember retrieves a member's payments, newest first
func (r *paymentRepository) ListByMember(gymID, memberID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("gym_id = ? AND member_id = ?", gymID, memberID).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error
	return payments, err
}

// SumOnDate returns the amount collected on a single day
func (r *paymentRepository) SumOnDate(gymID string, day time.Time) (decimal.Decimal, error) {
	var sum struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount + 0), 0) AS total").
		Where("gym_id = ? AND payment_date = ?", gymID, clock.DateOf(day)).
		Scan(&sum).Error
	return sum.Total, err
}

// CollectionTotals returns the amount and payment count inside [from, to]
func (r *paymentRepository) CollectionTotals(gymID string, from, to time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	err := r.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount + 0), 0) AS total, COUNT(*) AS count").
		Where("gym_id = ? AND payment_date >= ? AND payment_date <= ?",
			gymID, clock.DateOf(from), clock.DateOf(to)).
		Scan(&row).Error
	return row.Total, row.Count, err
}

// SumByMode breaks the period's collection down by payment mode
func (r *paymentRepository) SumByMode(gymID string, from, to time.Time) (map[string]decimal.Decimal, error) {
	var rows []struct {
		PaymentMode string
		Total       decimal.Decimal
	}
	err := r.db.Model(&models.Payment{}).
		Select("payment_mode, COALESCE(SUM(amount + 0), 0) AS total").
		Where("gym_id = ? AND payment_date >= ? AND payment_date <= ?",
			gymID, clock.DateOf(from), clock.DateOf(to)).
		Group("payment_mode").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.PaymentMode] = row.Total
	}
	return result, nil
}

// DailyBreakdown returns one row per day with payments inside [from, to].
// Days without payments are absent, not zero.
func (r *paymentRepository) DailyBreakdown(gymID string, from, to time.Time) ([]DailyCollection, error) {
	var rows []struct {
		PaymentDate time.Time
		Total       decimal.Decimal
		Count       int64
	}
	err := r.db.Model(&models.Payment{}).
		Select("payment_date, COALESCE(SUM(amount + 0), 0) AS total, COUNT(*) AS count").
		Where("gym_id = ? AND payment_date >= ? AND payment_date <= ?",
			gymID, clock.DateOf(from), clock.DateOf(to)).
		Group("payment_date").
		Order("payment_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]DailyCollection, 0, len(rows))
	for _, row := range rows {
		result = append(result, DailyCollection{
			Date:   row.PaymentDate,
			Amount: row.Total,
			Count:  row.Count,
		})
	}
	return result, nil
}
