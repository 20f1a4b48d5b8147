package membership

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
	ErrPlanNotFound       = errors.New("plan not found")
	ErrPlanInactive       = errors.New("plan is not active")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrInvalidTransition  = errors.New("invalid membership status transition")
	ErrNoPlanAvailable    = errors.New("no plan specified and no current membership to take one from")
	ErrNegativeAmount     = errors.New("amount must not be negative")
)

// Service owns the membership ledger: creation, status transitions, renewal
// chaining and the expiry sweep. Each operation runs as one transaction, and
// everything that touches a member's ledger first takes the member row's
// write lock so concurrent renewals and transitions serialize per member.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewService creates a membership service on the given database handle.
func NewService(db *gorm.DB, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{db: db, clock: clk}
}

// CreateInput carries the caller-supplied fields for a new membership.
// AmountTotal nil means "copy the plan's current price".
type CreateInput struct {
	MemberID    string
	PlanID      string
	StartDate   *time.Time
	AmountTotal *decimal.Decimal
	AmountPaid  decimal.Decimal
	Notes       string
	CreatedBy   string
}

// Create inserts a new active membership. Price and duration are copied
// from the plan here and never re-read, so later plan edits leave the
// membership untouched.
func (s *Service) Create(gymID string, in CreateInput) (*models.Membership, error) {
	if in.AmountPaid.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if in.AmountTotal != nil && in.AmountTotal.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var created *models.Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		locked, err := repos.Member.Touch(tx, gymID, in.MemberID)
		if err != nil {
			return err
		}
		if !locked {
			return ErrMemberNotFound
		}

		plan, err := repos.Plan.GetByID(gymID, in.PlanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		if err != nil {
			return err
		}
		if !plan.IsActive {
			return ErrPlanInactive
		}

		start := s.clock.Today()
		if in.StartDate != nil {
			start = clock.DateOf(*in.StartDate)
		}

		total := plan.Price
		if in.AmountTotal != nil {
			total = *in.AmountTotal
		}

		m := &models.Membership{
			GymID:       gymID,
			MemberID:    in.MemberID,
			PlanID:      plan.ID,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, plan.DurationDays),
			AmountTotal: total,
			AmountPaid:  in.AmountPaid,
			Status:      models.MembershipStatusActive,
			Notes:       in.Notes,
			CreatedBy:   in.CreatedBy,
		}
		if err := repos.Membership.Create(m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenewInput carries the caller-supplied fields for a renewal. Every field
// is optional; omitted ones are resolved from the member's current ledger.
type RenewInput struct {
	PlanID      string
	StartDate   *time.Time
	AmountTotal *decimal.Decimal
	AmountPaid  decimal.Decimal
	Notes       string
	CreatedBy   string
}

// Renew appends a new membership continuing the member's history. With no
// explicit start date the new row starts the day after the current active
// membership ends, or today when there is none. The prior membership is
// never mutated. Unlike Create, renewal does not require the resolved plan
// to still be active; a member on a retired plan can keep renewing it.
func (s *Service) Renew(gymID, memberID string, in RenewInput) (*models.Membership, error) {
	if in.AmountPaid.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if in.AmountTotal != nil && in.AmountTotal.IsNegative() {
		return nil, ErrNegativeAmount
	}

	var created *models.Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		// The member-row write lock is what stops two concurrent renewals
		// from both reading the same current membership and creating
		// overlapping rows.
		locked, err := repos.Member.Touch(tx, gymID, memberID)
		if err != nil {
			return err
		}
		if !locked {
			return ErrMemberNotFound
		}

		current, err := repos.Membership.CurrentActive(gymID, memberID, s.clock.Today())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		planID := in.PlanID
		if planID == "" {
			if current == nil {
				return ErrNoPlanAvailable
			}
			planID = current.PlanID
		}

		plan, err := repos.Plan.GetByID(gymID, planID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		if err != nil {
			return err
		}

		var start time.Time
		switch {
		case in.StartDate != nil:
			start = clock.DateOf(*in.StartDate)
		case current != nil:
			start = current.EndDate.AddDate(0, 0, 1)
		default:
			start = s.clock.Today()
		}

		total := plan.Price
		if in.AmountTotal != nil {
			total = *in.AmountTotal
		}

		m := &models.Membership{
			GymID:       gymID,
			MemberID:    memberID,
			PlanID:      plan.ID,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, plan.DurationDays),
			AmountTotal: total,
			AmountPaid:  in.AmountPaid,
			Status:      models.MembershipStatusActive,
			Notes:       in.Notes,
			CreatedBy:   in.CreatedBy,
		}
		if err := repos.Membership.Create(m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Pause moves an active membership to paused. The end date is not pushed
// out; a paused membership still expires on its original date.
func (s *Service) Pause(gymID, id string) (*models.Membership, error) {
	return s.transition(gymID, id, []string{models.MembershipStatusActive}, models.MembershipStatusPaused)
}

// Resume moves a paused membership back to active. Expired and cancelled
// rows never resume; the member needs a new membership instead.
func (s *Service) Resume(gymID, id string) (*models.Membership, error) {
	return s.transition(gymID, id, []string{models.MembershipStatusPaused}, models.MembershipStatusActive)
}

func (s *Service) transition(gymID, id string, from []string, to string) (*models.Membership, error) {
	var result *models.Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		m, err := repos.Membership.GetByID(gymID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		if err != nil {
			return err
		}

		if _, err := repos.Member.Touch(tx, gymID, m.MemberID); err != nil {
			return err
		}

		moved, err := repos.Membership.UpdateStatusFrom(gymID, id, from, to)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidTransition
		}

		m.Status = to
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel moves an active or paused membership to cancelled. Cancelling a
// row that is already expired or cancelled is a no-op success, so retries
// are safe.
func (s *Service) Cancel(gymID, id string) (*models.Membership, error) {
	var result *models.Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		m, err := repos.Membership.GetByID(gymID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		if err != nil {
			return err
		}

		if _, err := repos.Member.Touch(tx, gymID, m.MemberID); err != nil {
			return err
		}

		moved, err := repos.Membership.UpdateStatusFrom(gymID, id,
			[]string{models.MembershipStatusActive, models.MembershipStatusPaused},
			models.MembershipStatusCancelled)
		if err != nil {
			return err
		}
		if moved {
			m.Status = models.MembershipStatusCancelled
			result = m
			return nil
		}

		// Nothing moved: either the row is already terminal (fine) or it
		// changed under us in a way that still ends terminal.
		fresh, err := repos.Membership.GetByID(gymID, id)
		if err != nil {
			return err
		}
		if !fresh.IsTerminal() {
			return ErrInvalidTransition
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireSweep flips every active membership that ended before asOf to
// expired and returns how many rows moved. Safe to re-run for the same
// date.
func (s *Service) ExpireSweep(gymID string, asOf time.Time) (int64, error) {
	return repository.NewMembershipRepository(s.db).ExpireBefore(gymID, asOf)
}

// Get returns one membership.
func (s *Service) Get(gymID, id string) (*models.Membership, error) {
	m, err := repository.NewMembershipRepository(s.db).GetByID(gymID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	return m, err
}

// CurrentActive returns the membership covering the member as of the given
// date, or ErrMembershipNotFound when none does.
func (s *Service) CurrentActive(gymID, memberID string, asOf time.Time) (*models.Membership, error) {
	m, err := repository.NewMembershipRepository(s.db).CurrentActive(gymID, memberID, asOf)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	return m, err
}

// List returns a page of the gym's memberships, optionally filtered by
// stored status.
func (s *Service) List(gymID, status string, page, pageSize int) ([]models.Membership, int64, error) {
	return repository.NewMembershipRepository(s.db).List(gymID, status, page, pageSize)
}

// ListByMember returns the member's full membership history, newest first.
func (s *Service) ListByMember(gymID, memberID string) ([]models.Membership, error) {
	memberRepo := repository.NewMemberRepository(s.db)
	if _, err := memberRepo.GetByID(gymID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return repository.NewMembershipRepository(s.db).ListByMember(gymID, memberID)
}
