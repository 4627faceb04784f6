package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/task-manager-api/internal/constants"
	"github.com/taskhub/task-manager-api/internal/dto"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	router      *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.GET("/api/auth/username-check/:username", handler.UsernameCheck)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		router:      r,
	}
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"username": "new_user",
		"email":    "new_user@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "new_user", response.Username)

	// Password is stored hashed, never verbatim.
	var user models.User
	require.NoError(t, env.db.First(&user, "username = ?", "new_user").Error)
	require.NotEqual(t, "supersecret", user.PasswordHash)
	require.NotEmpty(t, user.PasswordHash)
}

func TestAuthHandler_Signup_InvalidUsername(t *testing.T) {
	env := setupAuthTestEnv(t)

	for _, username := range []string{"ab", "has space", "bad!chars", "waaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaay_too_long"} {
		w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
			"username": username,
			"email":    "user@example.com",
			"password": "supersecret",
		})
		require.Equal(t, http.StatusBadRequest, w.Code, "username %q", username)
	}
}

func TestAuthHandler_Signup_UsernameTaken(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"username": "existing",
		"email":    "existing@example.com",
		"password": "supersecret",
	}

	w := postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "existing", response.Username)
	require.NotEmpty(t, w.Result().Cookies())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"username": "existing",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UsernameCheck(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/username-check/existing", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.False(t, response["valid_username"])

	req = httptest.NewRequest(http.MethodGet, "/api/auth/username-check/fresh_name", nil)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.True(t, response["valid_username"])
}
