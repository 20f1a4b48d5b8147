package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNegativePrice rejects plans priced below zero; validator tags cannot
// express constraints on decimal.Decimal fields.
var ErrNegativePrice = errors.New("plan price must not be negative")

// Plan is a reusable membership offering (e.g. Monthly 30 days / 1500).
// Memberships copy duration and price at creation time, so editing a plan
// never alters memberships already sold from it.
type Plan struct {
	ID           string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID        string          `gorm:"type:varchar(36);not null;index:idx_plan_gym_active,priority:1" json:"gym_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=2,max=255"`
	Description  string          `gorm:"type:text" json:"description,omitempty"`
	DurationDays int             `gorm:"not null" json:"duration_days" validate:"required,gt=0"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsActive     bool            `gorm:"not null;default:true;index:idx_plan_gym_active,priority:2" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Plan) Validate() error {
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}

	v := validator.New()

	return v.Struct(p)
}
