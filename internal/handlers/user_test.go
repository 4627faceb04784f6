package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/task-manager-api/internal/dto"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db      *gorm.DB
	handler *UserHandler
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	userRepo := repository.NewUserRepository(db)
	handler := NewUserHandler(services.NewUserService(userRepo))

	gin.SetMode(gin.TestMode)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return userTestEnv{db: db, handler: handler}
}

func (env userTestEnv) createUser(t *testing.T, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func authedContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)
	return c, w
}

func TestUserHandler_ListUsers(t *testing.T) {
	env := setupUserTestEnv(t)
	env.createUser(t, "john_1", "pass123")
	env.createUser(t, "john_2", "123")

	c, w := authedContext(http.MethodGet, "/api/users", nil, 1)
	env.handler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var users []dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 2)
	require.Equal(t, "john_1", users[0].Username)

	// Nothing beyond id and username is exposed.
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw[0], 2)
}

func TestUserHandler_GetDetails(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "john_1", "pass123")

	c, w := authedContext(http.MethodGet, "/api/users/details", nil, user.ID)
	env.handler.GetDetails(c)

	require.Equal(t, http.StatusOK, w.Code)

	var details dto.UserDetailsDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	require.Equal(t, user.ID, details.ID)
	require.Equal(t, "john_1@example.com", details.Email)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "john_1", "pass123")

	newPassword := "better_password"
	body, _ := json.Marshal(map[string]any{
		"username":     "john_renamed",
		"email":        "renamed@example.com",
		"password":     "pass123",
		"new_password": newPassword,
	})
	c, w := authedContext(http.MethodPut, "/api/users", body, user.ID)
	env.handler.UpdateProfile(c)

	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.Equal(t, "john_renamed", stored.Username)
	require.Equal(t, "renamed@example.com", stored.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(newPassword)))
}

func TestUserHandler_UpdateProfile_WrongPassword(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "john_1", "pass123")

	body, _ := json.Marshal(map[string]any{
		"username": "john_1",
		"email":    "john_1@example.com",
		"password": "wrong",
	})
	c, w := authedContext(http.MethodPut, "/api/users", body, user.ID)
	env.handler.UpdateProfile(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_ChangeProfilePicture(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "john_1", "pass123")

	body, _ := json.Marshal(map[string]string{
		"image_base64": "aGVsbG8=",
	})
	c, w := authedContext(http.MethodPost, "/api/users/change-profile-picture", body, user.ID)
	env.handler.ChangeProfilePicture(c)
	// Gin defers the status write until the first body write; flush it so the
	// recorder sees the status set by c.Status on a body-less response.
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusAccepted, w.Code)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.ProfilePicture)
	require.Equal(t, "aGVsbG8=", *stored.ProfilePicture)
}
