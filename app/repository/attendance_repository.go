package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// attendanceRepository implements the AttendanceRepository interface
type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository instance
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Create records a check-in
func (r *attendanceRepository) Create(a *models.Attendance) error {
	return r.db.Create(a).Error
}

// Update saves a modified attendance row (check-out)
func (r *attendanceRepository) Update(a *models.Attendance) error {
	return r.db.Save(a).Error
}

// OpenForMemberSince finds the member's check-in without a check-out at or
// after the given instant.
func (r *attendanceRepository) OpenForMemberSince(gymID, memberID string, since time.Time) (*models.Attendance, error) {
	var a models.Attendance
	err := r.db.Where("gym_id = ? AND member_id = ? AND check_in_time >= ? AND check_out_time IS NULL",
		gymID, memberID, since).
		Order("check_in_time DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListBetween retrieves check-ins inside [from, to), newest first
func (r *attendanceRepository) ListBetween(gymID string, from, to time.Time, page, pageSize int) ([]models.Attendance, int64, error) {
	query := r.db.Model(&models.Attendance{}).
		Where("gym_id = ? AND check_in_time >= ? AND check_in_time < ?", gymID, from, to)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var visits []models.Attendance
	err := query.Order("check_in_time DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&visits).Error
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// ListByMember retrieves a member's most recent visits
func (r *attendanceRepository) ListByMember(gymID, memberID string, limit int) ([]models.Attendance, error) {
	if limit < 1 {
		limit = 30
	}
	var visits []models.Attendance
	err := r.db.Where("gym_id = ? AND member_id = ?", gymID, memberID).
		Order("check_in_time DESC").
		Limit(limit).
		Find(&visits).Error
	return visits, err
}

// CountBetween counts check-ins inside [from, to)
func (r *attendanceRepository) CountBetween(gymID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Attendance{}).
		Where("gym_id = ? AND check_in_time >= ? AND check_in_time < ?", gymID, from, to).
		Count(&count).Error
	return count, err
}
