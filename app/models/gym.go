package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusTrial     = "trial"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusSuspended = "suspended"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Gym is the tenant. Every other entity carries a GymID and is only ever
// read or written through queries scoped to it.
type Gym struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Address            string     `gorm:"type:text" json:"address,omitempty"`
	City               string     `gorm:"type:varchar(60);index" json:"city,omitempty" validate:"max=60"`
	Phone              string     `gorm:"type:varchar(15)" json:"phone,omitempty" validate:"max=15"`
	Email              string     `gorm:"type:varchar(200)" json:"email,omitempty" validate:"omitempty,email,max=200"`
	SubscriptionStatus string     `gorm:"type:varchar(20);not null;default:'trial'" json:"subscription_status" validate:"oneof=trial active expired suspended"`
	BillingCycle       string     `gorm:"type:varchar(10);not null;default:'monthly'" json:"billing_cycle" validate:"oneof=monthly yearly"`
	TrialEndsAt        *time.Time `gorm:"type:date;default:null" json:"trial_ends_at,omitempty"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *Gym) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

func (g *Gym) Validate() error {
	v := validator.New()

	return v.Struct(g)
}
