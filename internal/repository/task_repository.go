package repository

import (
	"time"

	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/query"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create persists a new task together with its notification row when an
// assignee is set.
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if task.AssigneeID != nil {
			notification := models.TaskAssignedNotification{
				TaskID:     task.ID,
				AssigneeID: *task.AssigneeID,
				CreatedOn:  time.Now(),
			}
			return tx.Create(&notification).Error
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	q := r.db

	for _, p := range preload {
		q = q.Preload(p)
	}

	if err := q.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks refined by the given scopes, with author and
// assignee preloaded. Without a sort scope the order is the storage's
// natural order.
func (r *GormTaskRepository) List(scopes ...query.Scope) ([]models.Task, error) {
	q := r.db.Model(&models.Task{})
	for _, scope := range scopes {
		q = scope(q)
	}

	var tasks []models.Task
	if err := q.Preload("Author").Preload("Assignee").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves the task row and reconciles the notification row when the
// assignee changed.
func (r *GormTaskRepository) Update(task *models.Task, previousAssigneeID *uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if !assigneeChanged(previousAssigneeID, task.AssigneeID) {
			return nil
		}

		if previousAssigneeID != nil {
			if err := tx.Delete(&models.TaskAssignedNotification{}, "task_id = ?", task.ID).Error; err != nil {
				return err
			}
		}

		if task.AssigneeID != nil {
			notification := models.TaskAssignedNotification{
				TaskID:     task.ID,
				AssigneeID: *task.AssigneeID,
				CreatedOn:  time.Now(),
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the task and its notification row, if any.
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TaskAssignedNotification{}, "task_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

func assigneeChanged(previous, current *uint64) bool {
	switch {
	case previous == nil && current == nil:
		return false
	case previous == nil || current == nil:
		return true
	default:
		return *previous != *current
	}
}
