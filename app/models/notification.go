package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeExpiryReminder = "expiry_reminder"
	NotificationTypePaymentDue     = "payment_due"
	NotificationTypeWelcome        = "welcome"
	NotificationTypeCustom         = "custom"
)

const (
	NotificationChannelWhatsApp = "whatsapp"
	NotificationChannelSMS      = "sms"
	NotificationChannelEmail    = "email"
)

const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// Notification is a queued message to a member (expiry reminders, payment
// dues). Rows are created pending and flipped to sent/failed by the
// delivery worker.
type Notification struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	GymID     string     `gorm:"type:varchar(36);not null;index:idx_notification_status,priority:1" json:"gym_id"`
	MemberID  string     `gorm:"type:varchar(36);not null;index" json:"member_id"`
	Type      string     `gorm:"type:varchar(30);not null" json:"type"`
	Channel   string     `gorm:"type:varchar(20);not null" json:"channel"`
	Subject   string     `gorm:"type:varchar(255)" json:"subject,omitempty"`
	Body      string     `gorm:"type:text;not null" json:"body"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_notification_status,priority:2" json:"status"`
	SentAt    *time.Time `gorm:"default:null" json:"sent_at,omitempty"`
	LastError string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
