package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/activehq/activehq/app/models"
)

// notificationRepository implements the NotificationRepository interface
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create queues a notification in pending state
func (r *notificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

// FindByID retrieves a notification by id across all gyms
func (r *notificationRepository) FindByID(id string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ExistsForMemberSince reports whether the member already has a notification
// of the given type created at or after since. Deduplicates reminder scans.
func (r *notificationRepository) ExistsForMemberSince(gymID, memberID, notificationType string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("gym_id = ? AND member_id = ? AND type = ? AND created_at >= ?",
			gymID, memberID, notificationType, since).
		Count(&count).Error
	return count > 0, err
}

// ListPending retrieves pending notifications across all gyms, oldest first.
// The delivery worker drains them in order.
func (r *notificationRepository) ListPending(limit int) ([]models.Notification, error) {
	if limit < 1 {
		limit = 50
	}
	var pending []models.Notification
	err := r.db.Where("status = ?", models.NotificationStatusPending).
		Order("created_at").
		Limit(limit).
		Find(&pending).Error
	return pending, err
}

// MarkSent flips the notification to sent and stamps the delivery time
func (r *notificationRepository) MarkSent(id string, at time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.NotificationStatusSent,
			"sent_at": at,
		}).Error
}

// MarkFailed flips the notification to failed and records the error
func (r *notificationRepository) MarkFailed(id string, errMsg string) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.NotificationStatusFailed,
			"last_error": errMsg,
		}).Error
}
