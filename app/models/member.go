package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Member is a gym customer. Members are created by staff, soft-deactivated
// instead of deleted, and keep their full membership and payment history.
type Member struct {
	ID                    string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID                 string     `gorm:"type:varchar(36);not null;index;uniqueIndex:uq_member_gym_phone,priority:1" json:"gym_id"`
	MemberCode            string     `gorm:"type:varchar(50)" json:"member_code,omitempty" validate:"max=50"`
	Name                  string     `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=2,max=255"`
	Email                 string     `gorm:"type:varchar(255)" json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone                 string     `gorm:"type:varchar(15);not null;uniqueIndex:uq_member_gym_phone,priority:2" json:"phone" validate:"required,min=7,max=15"`
	AlternatePhone        string     `gorm:"type:varchar(15)" json:"alternate_phone,omitempty" validate:"max=15"`
	Gender                string     `gorm:"type:varchar(10)" json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth           *time.Time `gorm:"type:date;default:null" json:"date_of_birth,omitempty"`
	Address               string     `gorm:"type:text" json:"address,omitempty"`
	EmergencyContactName  string     `gorm:"type:varchar(255)" json:"emergency_contact_name,omitempty" validate:"max=255"`
	EmergencyContactPhone string     `gorm:"type:varchar(15)" json:"emergency_contact_phone,omitempty" validate:"max=15"`
	PhotoURL              string     `gorm:"type:varchar(500)" json:"photo_url,omitempty" validate:"max=500"`
	JoinedDate            time.Time  `gorm:"type:date;not null;index:idx_member_joined,priority:2" json:"joined_date"`
	Notes                 string     `gorm:"type:text" json:"notes,omitempty"`
	IsActive              bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Member) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *Member) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
