package repository

import (
	"github.com/taskhub/task-manager-api/internal/models"
	"gorm.io/gorm"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// ListForUser returns all notifications currently held for a user.
func (r *GormNotificationRepository) ListForUser(userID uint64) ([]models.TaskAssignedNotification, error) {
	var notifications []models.TaskAssignedNotification
	if err := r.db.Where("assignee_id = ?", userID).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// Delete removes the notification row for a task; deleting an absent row
// is a no-op.
func (r *GormNotificationRepository) Delete(taskID uint64) error {
	return r.db.Delete(&models.TaskAssignedNotification{}, "task_id = ?", taskID).Error
}
