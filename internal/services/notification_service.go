package services

import (
	"fmt"

	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
)

// NotificationService serves the push channel: listing a user's current
// notifications and dismissing them.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
	}
}

// ListForUser returns the user's current notifications.
func (s *NotificationService) ListForUser(userID uint64) ([]models.TaskAssignedNotification, error) {
	notifications, err := s.notificationRepo.ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// Dismiss removes the notification for a task. Dismissing an already-gone
// notification is a no-op.
func (s *NotificationService) Dismiss(taskID uint64) error {
	if err := s.notificationRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return nil
}
