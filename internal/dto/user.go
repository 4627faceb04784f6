package dto

import "github.com/taskhub/task-manager-api/internal/models"

// UserDTO is the {id, username} projection exposed on task responses and
// the users listing. No other user fields ever leave the API this way.
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// UserDetailsDTO is the authenticated user's own account view.
type UserDetailsDTO struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToUserDetailsDTO converts a User model to UserDetailsDTO
func ToUserDetailsDTO(user models.User) UserDetailsDTO {
	return UserDetailsDTO{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
	}
}
