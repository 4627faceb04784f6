package dto

import (
	"time"

	"github.com/taskhub/task-manager-api/internal/models"
)

// TaskDTO represents a task in API responses. Author and assignee are
// reduced to their {id, username} summaries.
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Deadline    time.Time           `json:"deadline"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Author      UserDTO             `json:"author"`
	Assignee    *UserDTO            `json:"assignee"`
}

// ToTaskDTO converts a Task model to TaskDTO. Author and Assignee must be
// preloaded.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Status:      task.Status,
		Priority:    task.Priority,
		Author:      ToUserDTO(task.Author),
	}

	if task.Assignee != nil {
		assignee := ToUserDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
