package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles account management for the authenticated user.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns all users; callers project them to {id, username}.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetDetails returns the user's own account record.
func (s *UserService) GetDetails(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput is a profile update submitted by the owning user.
// Password is the current password and is always re-verified.
type UpdateProfileInput struct {
	UserID         uint64
	Username       string
	Email          string
	Password       string
	NewPassword    *string
	ProfilePicture *string
}

// UpdateProfile updates the user's own profile fields after verifying the
// current password.
func (s *UserService) UpdateProfile(input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetDetails(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	username := strings.TrimSpace(input.Username)
	if !utils.ValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !utils.ValidEmail(input.Email) {
		return nil, ErrInvalidEmail
	}

	if username != user.Username {
		if _, err := s.userRepo.FindByUsername(username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}

	user.Username = username
	user.Email = input.Email
	if input.ProfilePicture != nil {
		user.ProfilePicture = input.ProfilePicture
	}

	if input.NewPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// ChangeProfilePicture stores a base64-encoded profile image.
func (s *UserService) ChangeProfilePicture(userID uint64, imageBase64 string) error {
	user, err := s.GetDetails(userID)
	if err != nil {
		return err
	}

	user.ProfilePicture = &imageBase64

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update profile picture: %w", err)
	}

	return nil
}
