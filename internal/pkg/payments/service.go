package payments

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
)

var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrNegativeTax        = errors.New("tax amount must not be negative")
	ErrInvalidMode        = errors.New("unknown payment mode")
)

// Service records payments and keeps the membership ledger consistent with
// them. A payment linked to a membership and the membership's amount_paid
// increment commit in the same transaction, never separately.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewService creates a payment service on the given database handle.
func NewService(db *gorm.DB, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{db: db, clock: clk}
}

// RecordInput carries the caller-supplied fields for a payment.
type RecordInput struct {
	MemberID        string
	MembershipID    *string
	Amount          decimal.Decimal
	TaxAmount       decimal.Decimal
	PaymentMode     string
	PaymentDate     *time.Time
	ReferenceNumber string
	Notes           string
	ReceivedBy      string
}

// Record inserts the payment and, when linked to a membership, increments
// that membership's amount_paid by the payment amount in the same
// transaction. Tax never feeds the ledger. Overpaying is allowed; the
// resulting negative balance is reported as is.
func (s *Service) Record(gymID string, in RecordInput) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.TaxAmount.IsNegative() {
		return nil, ErrNegativeTax
	}
	if !models.ValidPaymentMode(in.PaymentMode) {
		return nil, ErrInvalidMode
	}

	date := s.clock.Today()
	if in.PaymentDate != nil {
		date = clock.DateOf(*in.PaymentDate)
	}

	var created *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		if _, err := repos.Member.GetByID(gymID, in.MemberID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		p := &models.Payment{
			GymID:           gymID,
			MemberID:        in.MemberID,
			MembershipID:    in.MembershipID,
			Amount:          in.Amount,
			TaxAmount:       in.TaxAmount,
			PaymentMode:     in.PaymentMode,
			PaymentDate:     date,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
			ReceivedBy:      in.ReceivedBy,
		}
		if err := repos.Payment.Create(p); err != nil {
			return err
		}

		if in.MembershipID != nil {
			applied, err := repos.Membership.IncrementPaid(gymID, *in.MembershipID, in.Amount)
			if err != nil {
				return err
			}
			if !applied {
				// Rolls back the insert above; no orphaned payment row.
				return ErrMembershipNotFound
			}
		}

		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns one payment.
func (s *Service) Get(gymID, id string) (*models.Payment, error) {
	p, err := repository.NewPaymentRepository(s.db).GetByID(gymID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// List returns a page of payments plus the count and amount sum over the
// whole filtered set.
func (s *Service) List(gymID string, f repository.PaymentFilter, page, pageSize int) ([]models.Payment, int64, decimal.Decimal, error) {
	return repository.NewPaymentRepository(s.db).List(gymID, f, page, pageSize)
}

// DaySummary is the collection summary for a single day.
type DaySummary struct {
	Date        time.Time                  `json:"date"`
	TotalAmount decimal.Decimal            `json:"total_amount"`
	TotalCount  int64                      `json:"total_count"`
	ByMode      map[string]decimal.Decimal `json:"by_mode"`
}

// DailyCollection returns the amount, count and per-mode split collected on
// one day. The front desk reconciles the cash drawer against it at closing.
func (s *Service) DailyCollection(gymID string, day time.Time) (*DaySummary, error) {
	d := clock.DateOf(day)
	repo := repository.NewPaymentRepository(s.db)

	total, count, err := repo.CollectionTotals(gymID, d, d)
	if err != nil {
		return nil, err
	}
	byMode, err := repo.SumByMode(gymID, d, d)
	if err != nil {
		return nil, err
	}

	return &DaySummary{
		Date:        d,
		TotalAmount: total,
		TotalCount:  count,
		ByMode:      byMode,
	}, nil
}

// ListByMember returns a member's payments, newest first.
func (s *Service) ListByMember(gymID, memberID string) ([]models.Payment, error) {
	memberRepo := repository.NewMemberRepository(s.db)
	if _, err := memberRepo.GetByID(gymID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return repository.NewPaymentRepository(s.db).ListByMember(gymID, memberID)
}
