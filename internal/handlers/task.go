package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/task-manager-api/internal/dto"
	apierrors "github.com/taskhub/task-manager-api/internal/errors"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/query"
	"github.com/taskhub/task-manager-api/internal/services"
	"github.com/taskhub/task-manager-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// taskRequest is the task body for create and update requests. author is
// never read from it; the session identity is the acting user.
type taskRequest struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Deadline    string              `json:"deadline" binding:"required"`
	AssigneeID  *uint64             `json:"assignee_id"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
}

// ListTasks returns all tasks, optionally refined by the filter and sort
// query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Query("filter"), c.Query("sort"))
	if err != nil {
		var parseErr *query.ParseError
		if errors.As(err, &parseErr) {
			apierrors.BadRequest(c, parseErr.Message)
			return
		}
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a single task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.taskService.GetTask(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task with the authenticated user as author.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deadline date")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		AuthorID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a full-row update submitted for a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.ID == 0 {
		apierrors.BadRequest(c, "Task id is required")
		return
	}

	deadline, err := utils.ParseDate(req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, "Invalid deadline date")
		return
	}

	task, err := h.taskService.UpdateTask(services.UpdateTaskInput{
		ID:          req.ID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		AssigneeID:  req.AssigneeID,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task; author only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Query("taskId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid taskId")
		return
	}

	if err := h.taskService.DeleteTask(id, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskAuthor),
		errors.Is(err, services.ErrRestrictedFields):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrDescriptionTooLong),
		errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
