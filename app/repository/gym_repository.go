package repository

import (
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// gymRepository implements the GymRepository interface
type gymRepository struct {
	db *gorm.DB
}

// NewGymRepository creates a new gym repository instance
func NewGymRepository(db *gorm.DB) GymRepository {
	return &gymRepository{db: db}
}

// CreateWithOwner inserts the gym and its owner account in one transaction.
// The owner carries the gym id, so the gym row is created first.
func (r *gymRepository) CreateWithOwner(gym *models.Gym, owner *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(gym).Error; err != nil {
			return err
		}
		owner.GymID = gym.ID
		return tx.Create(owner).Error
	})
}

// GetByID retrieves a gym by id
func (r *gymRepository) GetByID(id string) (*models.Gym, error) {
	var gym models.Gym
	err := r.db.Where("id = ?", id).First(&gym).Error
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

// Update updates an existing gym
func (r *gymRepository) Update(gym *models.Gym) error {
	return r.db.Save(gym).Error
}

// ListActiveIDs returns the ids of all active gyms, used by the nightly
// sweep to iterate tenants.
func (r *gymRepository) ListActiveIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Gym{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}
