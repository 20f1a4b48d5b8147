package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// memberRepository implements the MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository instance
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member in the database
func (r *memberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

// GetByID retrieves a member by id within the gym
func (r *memberRepository) GetByID(gymID, id string) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("gym_id = ? AND id = ?", gymID, id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByPhone retrieves a member by phone number within the gym
func (r *memberRepository) GetByPhone(gymID, phone string) (*models.Member, error) {
	var member models.Member
	err := r.db.Where("gym_id = ? AND phone = ?", gymID, phone).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Update updates an existing member
func (r *memberRepository) Update(member *models.Member) error {
	return r.db.Save(member).Error
}

// SetActive flips the soft-delete flag
func (r *memberRepository) SetActive(gymID, id string, active bool) error {
	res := r.db.Model(&models.Member{}).
		Where("gym_id = ? AND id = ?", gymID, id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves active members with search, membership-status filter and pagination
func (r *memberRepository) List(gymID string, opts MemberListOptions) ([]models.Member, int64, error) {
	query := r.db.Model(&models.Member{}).
		Where("gym_id = ? AND is_active = ?", gymID, true)

	if s := strings.TrimSpace(opts.Search); s != "" {
		pattern := "%" + s + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR member_code LIKE ?", pattern, pattern, pattern)
	}

	// A member counts as covered when they hold an active membership whose
	// end date has not passed as of the given date.
	covered := r.db.Model(&models.Membership{}).
		Select("member_id").
		Where("gym_id = ? AND status = ? AND end_date >= ?", gymID, models.MembershipStatusActive, opts.AsOf)

	switch opts.Status {
	case "active":
		query = query.Where("id IN (?)", covered)
	case "expired":
		query = query.Where("id NOT IN (?)", covered)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var members []models.Member
	offset := (page - 1) * pageSize
	if err := query.Order("name").Offset(offset).Limit(pageSize).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// CountActive returns the number of members not soft-deleted
func (r *memberRepository) CountActive(gymID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Member{}).
		Where("gym_id = ? AND is_active = ?", gymID, true).
		Count(&count).Error
	return count, err
}

// Touch performs a blind update on the member row inside the given
// transaction. The write acquires the row lock that serializes renewals.
func (r *memberRepository) Touch(tx *gorm.DB, gymID, id string) (bool, error) {
	res := tx.Model(&models.Member{}).
		Where("gym_id = ? AND id = ?", gymID, id).
		Update("updated_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
