package attendance

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
	"github.com/activehq/activehq/app/repository"
	"github.com/activehq/activehq/internal/pkg/clock"
)

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadyCheckedIn  = errors.New("member already has an open check-in today")
	ErrNoOpenCheckIn     = errors.New("member has no open check-in today")
	ErrMemberDeactivated = errors.New("member is deactivated")
)

// Service tracks gym visits.
type Service struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewService creates an attendance service on the given database handle.
func NewService(db *gorm.DB, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System()
	}
	return &Service{db: db, clock: clk}
}

// CheckIn records a visit. A member with an open check-in today cannot
// check in again until they check out.
func (s *Service) CheckIn(gymID, memberID, markedBy string) (*models.Attendance, error) {
	var created *models.Attendance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		member, err := repos.Member.GetByID(gymID, memberID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		if !member.IsActive {
			return ErrMemberDeactivated
		}

		_, err = repos.Attendance.OpenForMemberSince(gymID, memberID, s.clock.Today())
		if err == nil {
			return ErrAlreadyCheckedIn
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		a := &models.Attendance{
			GymID:       gymID,
			MemberID:    memberID,
			CheckInTime: s.clock.Now(),
			MarkedBy:    markedBy,
		}
		if err := repos.Attendance.Create(a); err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CheckOut closes the member's open check-in from today.
func (s *Service) CheckOut(gymID, memberID string) (*models.Attendance, error) {
	var updated *models.Attendance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repos := repository.NewRepositories(tx)

		open, err := repos.Attendance.OpenForMemberSince(gymID, memberID, s.clock.Today())
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoOpenCheckIn
		}
		if err != nil {
			return err
		}

		now := s.clock.Now()
		open.CheckOutTime = &now
		if err := repos.Attendance.Update(open); err != nil {
			return err
		}
		updated = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListForDay returns the gym's check-ins on one day.
func (s *Service) ListForDay(gymID string, day time.Time, page, pageSize int) ([]models.Attendance, int64, error) {
	start := clock.DateOf(day)
	return repository.NewAttendanceRepository(s.db).
		ListBetween(gymID, start, start.AddDate(0, 0, 1), page, pageSize)
}

// ListByMember returns a member's recent visits.
func (s *Service) ListByMember(gymID, memberID string, limit int) ([]models.Attendance, error) {
	memberRepo := repository.NewMemberRepository(s.db)
	if _, err := memberRepo.GetByID(gymID, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return repository.NewAttendanceRepository(s.db).ListByMember(gymID, memberID, limit)
}
