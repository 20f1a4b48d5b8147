package repository

import (
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan in the database
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by id within the gym
func (r *planRepository) GetByID(gymID, id string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("gym_id = ? AND id = ?", gymID, id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// List retrieves the gym's plans ordered by duration
func (r *planRepository) List(gymID string, activeOnly bool) ([]models.Plan, error) {
	query := r.db.Where("gym_id = ?", gymID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var plans []models.Plan
	err := query.Order("duration_days").Find(&plans).Error
	return plans, err
}

// Update updates an existing plan. Memberships created from the plan are
// unaffected; they copied price and duration at creation time.
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// SetActive flips plan availability
func (r *planRepository) SetActive(gymID, id string, active bool) error {
	res := r.db.Model(&models.Plan{}).
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
