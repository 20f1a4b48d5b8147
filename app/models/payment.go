package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentModeCash         = "cash"
	PaymentModeUPI          = "upi"
	PaymentModeCard         = "card"
	PaymentModeBankTransfer = "bank_transfer"
	PaymentModeOther        = "other"
)

// Payment records money received from a member. When linked to a
// membership, the membership's amount_paid is incremented in the same
// transaction that inserts the row; the two facts are never committed
// separately.
type Payment struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID           string          `gorm:"type:varchar(36);not null;index:idx_payment_date,priority:1;index:idx_payment_mode,priority:1" json:"gym_id"`
	MemberID        string          `gorm:"type:varchar(36);not null;index" json:"member_id"`
	MembershipID    *string         `gorm:"type:varchar(36);index;default:null" json:"membership_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax_amount"`
	PaymentMode     string          `gorm:"type:varchar(20);not null;index:idx_payment_mode,priority:2" json:"payment_mode"`
	PaymentDate     time.Time       `gorm:"type:date;not null;index:idx_payment_date,priority:2" json:"payment_date"`
	ReferenceNumber string          `gorm:"type:varchar(255)" json:"reference_number,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	ReceivedBy      string          `gorm:"type:varchar(36)" json:"received_by,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TotalAmount is the gross receipt including tax. Tax is tracked separately
// and never feeds into a membership's amount_paid.
func (p *Payment) TotalAmount() decimal.Decimal {
	return p.Amount.Add(p.TaxAmount)
}

// ValidPaymentMode reports whether mode is one of the accepted modes.
func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeBankTransfer, PaymentModeOther:
		return true
	}
	return false
}
