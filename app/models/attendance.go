package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance records a member's gym visit. Check-out is optional; many
// gyms only track check-ins.
type Attendance struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID        string     `gorm:"type:varchar(36);not null;index:idx_attendance_daily,priority:1" json:"gym_id"`
	MemberID     string     `gorm:"type:varchar(36);not null;index:idx_attendance_member,priority:1" json:"member_id"`
	CheckInTime  time.Time  `gorm:"not null;index:idx_attendance_daily,priority:2;index:idx_attendance_member,priority:2" json:"check_in_time"`
	CheckOutTime *time.Time `gorm:"default:null" json:"check_out_time,omitempty"`
	MarkedBy     string     `gorm:"type:varchar(36)" json:"marked_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Attendance) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
