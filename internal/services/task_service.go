package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taskhub/task-manager-api/internal/constants"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/query"
	"github.com/taskhub/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNotTaskAuthor    = errors.New("only the task author can perform this action")
	ErrRestrictedFields = errors.New("only status and assignee may be changed by a non-author")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = errors.New("title exceeds 128 characters")
	ErrDescriptionTooLong = errors.New("description exceeds 4012 characters")
	ErrAssigneeNotFound = errors.New("assignee does not exist")
)

// Notifier pushes a user's current notification list to their live
// connections. Users without a connection are not an error.
type Notifier interface {
	NotifyUser(userID uint64)
}

// NopNotifier discards pushes; used when the hub is absent (tests, tools).
type NopNotifier struct{}

func (NopNotifier) NotifyUser(uint64) {}

// TaskService handles task business logic and the notification fan-out
// triggered by assignment changes.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	notifier Notifier
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, notifier Notifier) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// ListTasks returns tasks refined by the optional filter and sort
// expressions. A malformed expression surfaces as a *query.ParseError.
func (s *TaskService) ListTasks(filterExpr, sortExpr string) ([]models.Task, error) {
	var scopes []query.Scope

	if filterExpr != "" {
		scope, err := query.Filter(filterExpr)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}

	if sortExpr != "" {
		scope, err := query.Sort(sortExpr)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}

	tasks, err := s.taskRepo.List(scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by ID with author and assignee loaded.
func (s *TaskService) GetTask(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "Author", "Assignee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTaskInput represents input for creating a task. AuthorID always
// comes from the authenticated identity, never from the request body.
type CreateTaskInput struct {
	AuthorID    uint64
	Title       string
	Description string
	Deadline    time.Time
	AssigneeID  *uint64
	Status      models.TaskStatus
	Priority    models.TaskPriority
}

// CreateTask persists a new task. When an assignee is set, the matching
// notification row is written in the same transaction and the assignee's
// live connections are pushed afterwards.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if err := validateTaskFields(input.Title, input.Description); err != nil {
		return nil, err
	}
	if err := s.checkAssigneeExists(input.AssigneeID); err != nil {
		return nil, err
	}

	task := models.Task{
		AuthorID:    input.AuthorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Deadline:    input.Deadline,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Priority:    input.Priority,
	}

	if err := s.taskRepo.Create(&task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssigneeID != nil {
		s.notifier.NotifyUser(*task.AssigneeID)
	}

	return s.GetTask(task.ID)
}

// UpdateTaskInput represents a full-row update submitted for a task.
type UpdateTaskInput struct {
	ID          uint64
	ActorID     uint64
	Title       string
	Description string
	Deadline    time.Time
	AssigneeID  *uint64
	Status      models.TaskStatus
	Priority    models.TaskPriority
}

// UpdateTask saves a full task row. The author may change any field; a
// non-author submission must leave title, description and priority
// untouched. On an assignee change the notification rows are reconciled
// in the update transaction and both affected users are pushed before
// returning; a user without a live connection is simply skipped.
func (s *TaskService) UpdateTask(input UpdateTaskInput) (*models.Task, error) {
	stored, err := s.taskRepo.FindByID(input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.ActorID != stored.AuthorID {
		if input.Title != stored.Title ||
			input.Description != stored.Description ||
			input.Priority != stored.Priority {
			return nil, ErrRestrictedFields
		}
	}

	if err := validateTaskFields(input.Title, input.Description); err != nil {
		return nil, err
	}
	if err := s.checkAssigneeExists(input.AssigneeID); err != nil {
		return nil, err
	}

	previousAssigneeID := stored.AssigneeID

	task := models.Task{
		ID:          stored.ID,
		AuthorID:    stored.AuthorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Deadline:    input.Deadline,
		AssigneeID:  input.AssigneeID,
		Status:      input.Status,
		Priority:    input.Priority,
	}

	if err := s.taskRepo.Update(&task, previousAssigneeID); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.notifyAssigneeChange(previousAssigneeID, task.AssigneeID)

	return s.GetTask(task.ID)
}

// DeleteTask removes a task. Author only. The former assignee, if any, is
// pushed their now-shorter notification list.
func (s *TaskService) DeleteTask(id, actorID uint64) error {
	stored, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if stored.AuthorID != actorID {
		return ErrNotTaskAuthor
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if stored.AssigneeID != nil {
		s.notifier.NotifyUser(*stored.AssigneeID)
	}

	return nil
}

// notifyAssigneeChange pushes updated notification lists to the users on
// both sides of an assignee change. The pushes run concurrently and both
// attempts complete before returning.
func (s *TaskService) notifyAssigneeChange(previous, current *uint64) {
	if !assigneeDiffers(previous, current) {
		return
	}

	var wg sync.WaitGroup
	for _, userID := range []*uint64{previous, current} {
		if userID == nil {
			continue
		}
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			s.notifier.NotifyUser(id)
		}(*userID)
	}
	wg.Wait()
}

func (s *TaskService) checkAssigneeExists(assigneeID *uint64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(*assigneeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	return nil
}

func validateTaskFields(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if len(title) > constants.MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(description) > constants.MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func assigneeDiffers(previous, current *uint64) bool {
	switch {
	case previous == nil && current == nil:
		return false
	case previous == nil || current == nil:
		return true
	default:
		return *previous != *current
	}
}
