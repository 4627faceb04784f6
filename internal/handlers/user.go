package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub/task-manager-api/internal/dto"
	apierrors "github.com/taskhub/task-manager-api/internal/errors"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/services"
)

// UserHandler coordinates user account HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns every user as {id, username}; the task form uses it
// for its assignee picker.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	summaries := make([]dto.UserDTO, len(users))
	for i, user := range users {
		summaries[i] = dto.ToUserDTO(user)
	}

	c.JSON(http.StatusOK, summaries)
}

// GetDetails returns the authenticated user's account record.
func (h *UserHandler) GetDetails(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetDetails(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailsDTO(*user))
}

// UpdateProfile updates the authenticated user's own profile. The current
// password is always re-verified.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateProfileRequest struct {
		Username       string  `json:"username" binding:"required"`
		Email          string  `json:"email" binding:"required"`
		Password       string  `json:"password" binding:"required"`
		NewPassword    *string `json:"new_password"`
		ProfilePicture *string `json:"profile_picture"`
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(services.UpdateProfileInput{
		UserID:         userID,
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		NewPassword:    req.NewPassword,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDetailsDTO(*user))
}

// ChangeProfilePicture stores a base64-encoded profile image.
func (h *UserHandler) ChangeProfilePicture(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ChangeProfilePictureRequest struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}

	var req ChangeProfilePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.ChangeProfilePicture(userID, req.ImageBase64); err != nil {
		respondUserError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidEmail):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
