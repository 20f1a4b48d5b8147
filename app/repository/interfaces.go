package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// Every method below takes the owning gym id as its first argument and
// every query is predicated on it. An entity that exists under another
// tenant is reported exactly like an absent one (gorm.ErrRecordNotFound),
// so cross-tenant existence is never observable.

// MemberRepository defines the interface for member-related database operations
type MemberRepository interface {
	Create(member *models.Member) error
	GetByID(gymID, id string) (*models.Member, error)
	GetByPhone(gymID, phone string) (*models.Member, error)
	Update(member *models.Member) error
	SetActive(gymID, id string, active bool) error
	List(gymID string, opts MemberListOptions) ([]models.Member, int64, error)
	CountActive(gymID string) (int64, error)
	// Touch performs a blind update on the member row. Inside a transaction
	// this takes a row lock on MySQL and the write lock on SQLite, which is
	// how renewal and status transitions are serialized per member.
	Touch(tx *gorm.DB, gymID, id string) (bool, error)
}

// MemberListOptions filters and paginates member listings.
type MemberListOptions struct {
	Search   string // matches name, phone or member code
	Status   string // "", "active" or "expired" (membership coverage as of AsOf)
	AsOf     time.Time
	Page     int
	PageSize int
}

// PlanRepository defines the interface for plan-related database operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(gymID, id string) (*models.Plan, error)
	List(gymID string, activeOnly bool) ([]models.Plan, error)
	Update(plan *models.Plan) error
	SetActive(gymID, id string, active bool) error
}

// MembershipRepository defines the interface for membership ledger storage.
type MembershipRepository interface {
	Create(m *models.Membership) error
	GetByID(gymID, id string) (*models.Membership, error)
	List(gymID, status string, page, pageSize int) ([]models.Membership, int64, error)
	ListByMember(gymID, memberID string) ([]models.Membership, error)
	// CurrentActive returns the member's active membership with end_date >=
	// asOf, preferring the latest end_date (id breaks remaining ties).
	CurrentActive(gymID, memberID string, asOf time.Time) (*models.Membership, error)
	// UpdateStatusFrom is a compare-and-swap: the row moves to `to` only if
	// its current status is one of `from`. Returns whether a row moved.
	UpdateStatusFrom(gymID, id string, from []string, to string) (bool, error)
	// ExpireBefore transitions every active membership with end_date
	// strictly before asOf to expired and returns the number of rows moved.
	// Only rows currently active are touched, so the sweep is idempotent.
	ExpireBefore(gymID string, asOf time.Time) (int64, error)
	// IncrementPaid applies `amount_paid = amount_paid + amount` as a single
	// SQL expression, never read-modify-write. Returns whether a row matched.
	IncrementPaid(gymID, id string, amount decimal.Decimal) (bool, error)

	// Reporting reads.
	CountActiveCurrent(gymID string, asOf time.Time) (int64, error)
	CountPaused(gymID string) (int64, error)
	CountExpired(gymID string, asOf time.Time) (int64, error)
	CountExpiringWithin(gymID string, asOf, until time.Time) (int64, error)
	CountDistinctMembersCurrent(gymID string, asOf time.Time) (int64, error)
	CountDistinctMembersExpiring(gymID string, asOf, until time.Time) (int64, error)
	ExpiringWithin(gymID string, asOf, until time.Time) ([]ExpiringMembership, error)
	DuesByMember(gymID string) ([]MemberDues, error)
	DuesTotals(gymID string) (int64, decimal.Decimal, error)
}

// PaymentRepository defines the interface for payment storage and the
// aggregations backing the collection reports.
type PaymentRepository interface {
	Create(payment *models.Payment) error
	GetByID(gymID, id string) (*models.Payment, error)
	// List returns the requested page plus the count and SUM(amount) over
	// the entire filtered set, not just the returned page.
	List(gymID string, f PaymentFilter, page, pageSize int) ([]models.Payment, int64, decimal.Decimal, error)
	ListByMember(gymID, memberID string) ([]models.Payment, error)
	SumOnDate(gymID string, day time.Time) (decimal.Decimal, error)
	CollectionTotals(gymID string, from, to time.Time) (decimal.Decimal, int64, error)
	SumByMode(gymID string, from, to time.Time) (map[string]decimal.Decimal, error)
	DailyBreakdown(gymID string, from, to time.Time) ([]DailyCollection, error)
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	MemberID string
	FromDate *time.Time
	ToDate   *time.Time
	Mode     string
}

// AttendanceRepository defines the interface for attendance bookkeeping.
type AttendanceRepository interface {
	Create(a *models.Attendance) error
	Update(a *models.Attendance) error
	// OpenForMemberSince finds a check-in without check-out at or after the
	// given instant (used to reject double check-ins).
	OpenForMemberSince(gymID, memberID string, since time.Time) (*models.Attendance, error)
	ListBetween(gymID string, from, to time.Time, page, pageSize int) ([]models.Attendance, int64, error)
	ListByMember(gymID, memberID string, limit int) ([]models.Attendance, error)
	CountBetween(gymID string, from, to time.Time) (int64, error)
}

// UserRepository defines the interface for staff user operations. Emails
// are globally unique, so lookups by email are not tenant scoped.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateLastLogin(id string, at time.Time) error
}

// GymRepository defines the interface for tenant records.
type GymRepository interface {
	CreateWithOwner(gym *models.Gym, owner *models.User) error
	GetByID(id string) (*models.Gym, error)
	Update(gym *models.Gym) error
	ListActiveIDs() ([]string, error)
}

// NotificationRepository defines the interface for queued member notifications.
type NotificationRepository interface {
	Create(n *models.Notification) error
	// FindByID is not tenant scoped; only the cross-tenant delivery worker
	// uses it.
	FindByID(id string) (*models.Notification, error)
	ExistsForMemberSince(gymID, memberID, notificationType string, since time.Time) (bool, error)
	ListPending(limit int) ([]models.Notification, error)
	MarkSent(id string, at time.Time) error
	MarkFailed(id string, errMsg string) error
}

// DemoRequestRepository captures public sales leads (not tenant scoped).
type DemoRequestRepository interface {
	Create(d *models.DemoRequest) error
	List(page, pageSize int) ([]models.DemoRequest, int64, error)
}

// ExpiringMembership is a membership joined with its member and plan for
// the expiring-members report.
type ExpiringMembership struct {
	Membership  models.Membership
	MemberName  string
	MemberPhone string
	PlanName    string
}

// MemberDues aggregates a member's outstanding balance across all their
// memberships.
type MemberDues struct {
	MemberID    string
	MemberName  string
	MemberPhone string
	TotalDue    decimal.Decimal
	LatestEnd   time.Time
}

// DailyCollection is one day of the collection report breakdown.
type DailyCollection struct {
	Date   time.Time
	Amount decimal.Decimal
	Count  int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	Member       MemberRepository
	Plan         PlanRepository
	Membership   MembershipRepository
	Payment      PaymentRepository
	Attendance   AttendanceRepository
	User         UserRepository
	Gym          GymRepository
	Notification NotificationRepository
	DemoRequest  DemoRequestRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Member:       NewMemberRepository(db),
		Plan:         NewPlanRepository(db),
		Membership:   NewMembershipRepository(db),
		Payment:      NewPaymentRepository(db),
		Attendance:   NewAttendanceRepository(db),
		User:         NewUserRepository(db),
		Gym:          NewGymRepository(db),
		Notification: NewNotificationRepository(db),
		DemoRequest:  NewDemoRequestRepository(db),
	}
}
