package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/activehq/activehq/internal/pkg/clock"
)

const (
	MembershipStatusActive    = "active"
	MembershipStatusPaused    = "paused"
	MembershipStatusExpired   = "expired"
	MembershipStatusCancelled = "cancelled"
)

// Membership is one time-bounded subscription instance. A member accrues a
// new row per renewal or plan change; history is never rewritten. Duration
// and price are copied from the plan at creation time and end_date is fixed
// once computed.
type Membership struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID       string          `gorm:"type:varchar(36);not null;index:idx_membership_expiry,priority:1" json:"gym_id"`
	MemberID    string          `gorm:"type:varchar(36);not null;index:idx_membership_member_end,priority:1" json:"member_id"`
	PlanID      string          `gorm:"type:varchar(36);not null;index" json:"plan_id"`
	StartDate   time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time       `gorm:"type:date;not null;index:idx_membership_expiry,priority:3;index:idx_membership_member_end,priority:2" json:"end_date"`
	AmountTotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_total"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount_paid"`
	Status      string          `gorm:"type:varchar(20);not null;default:'active';index:idx_membership_expiry,priority:2" json:"status"`
	Notes       string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy   string          `gorm:"type:varchar(36)" json:"created_by,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Membership) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AmountDue is the outstanding balance. Overpayment is allowed, so the
// result may be negative; it is never clamped.
func (m *Membership) AmountDue() decimal.Decimal {
	return m.AmountTotal.Sub(m.AmountPaid)
}

// EffectiveStatus layers the end-date comparison over the stored status: an
// active membership whose end date has passed reads as expired even before
// the nightly sweep has flipped the row. Every reporting and lookup path
// goes through this one function instead of repeating the comparison.
func (m *Membership) EffectiveStatus(asOf time.Time) string {
	if m.Status == MembershipStatusActive && m.EndDate.Before(clock.DateOf(asOf)) {
		return MembershipStatusExpired
	}
	return m.Status
}

// IsTerminal reports whether the stored status permits no further
// transitions on this row.
func (m *Membership) IsTerminal() bool {
	return m.Status == MembershipStatusExpired || m.Status == MembershipStatusCancelled
}
