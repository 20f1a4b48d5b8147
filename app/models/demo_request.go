package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemoRequest is a sales lead captured from the public site. Not tenant
// scoped; there is no gym yet.
type DemoRequest struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	GymName   string    `gorm:"type:varchar(150);not null" json:"gym_name" validate:"required,min=2,max=150"`
	Phone     string    `gorm:"type:varchar(20);not null;index" json:"phone" validate:"required,min=7,max=20"`
	City      string    `gorm:"type:varchar(60);not null;index" json:"city" validate:"required,max=60"`
	Locality  string    `gorm:"type:varchar(80)" json:"locality,omitempty" validate:"max=80"`
	Email     string    `gorm:"type:varchar(120)" json:"email,omitempty" validate:"omitempty,email,max=120"`
	Source    string    `gorm:"type:varchar(50);default:'public_site'" json:"source,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *DemoRequest) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *DemoRequest) Validate() error {
	v := validator.New()

	return v.Struct(d)
}
