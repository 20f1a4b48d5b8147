package repository

import (
	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// demoRequestRepository implements the DemoRequestRepository interface
type demoRequestRepository struct {
	db *gorm.DB
}

// NewDemoRequestRepository creates a new demo request repository instance
func NewDemoRequestRepository(db *gorm.DB) DemoRequestRepository {
	return &demoRequestRepository{db: db}
}

// Create stores a demo request from the public site
func (r *demoRequestRepository) Create(d *models.DemoRequest) error {
	return r.db.Create(d).Error
}

// List retrieves demo requests, newest first
func (r *demoRequestRepository) List(page, pageSize int) ([]models.DemoRequest, int64, error) {
	var total int64
	if err := r.db.Model(&models.DemoRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var requests []models.DemoRequest
	err := r.db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}
