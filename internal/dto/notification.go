package dto

import (
	"time"

	"github.com/taskhub/task-manager-api/internal/models"
)

// NotificationDTO represents a task-assigned notification pushed over the
// websocket channel.
type NotificationDTO struct {
	TaskID     uint64    `json:"task_id"`
	AssigneeID uint64    `json:"assignee_id"`
	CreatedOn  time.Time `json:"created_on"`
}

// ToNotificationDTOs converts notification models for the push channel.
func ToNotificationDTOs(notifications []models.TaskAssignedNotification) []NotificationDTO {
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = NotificationDTO{
			TaskID:     n.TaskID,
			AssigneeID: n.AssigneeID,
			CreatedOn:  n.CreatedOn,
		}
	}
	return dtos
}
