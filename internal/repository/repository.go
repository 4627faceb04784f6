package repository

import (
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/query"
)

// TaskRepository defines the interface for task data access. Mutations keep
// the task row and its notification row consistent within one transaction.
type TaskRepository interface {
	// Create persists a new task and, when it carries an assignee, the
	// matching notification row.
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks (author and assignee preloaded) refined by the
	// given query scopes.
	List(scopes ...query.Scope) ([]models.Task, error)

	// Update saves the full task row. previousAssigneeID is the assignee
	// before the update; when it differs from the task's current assignee
	// the old notification row is deleted and a new one created as needed.
	Update(task *models.Task, previousAssigneeID *uint64) error

	// Delete removes the task and its notification row, if any.
	Delete(id uint64) error
}

// NotificationRepository defines the interface for task-assigned
// notification data access.
type NotificationRepository interface {
	// ListForUser returns all notifications currently held for a user.
	ListForUser(userID uint64) ([]models.TaskAssignedNotification, error)

	// Delete removes the notification row for a task. Removing an absent
	// row is not an error.
	Delete(taskID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List returns all users
	List() ([]models.User, error)

	// Update saves the full user row
	Update(user *models.User) error
}
