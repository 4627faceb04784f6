package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/taskhub/task-manager-api/internal/models"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type hubTestEnv struct {
	db          *gorm.DB
	hub         *Hub
	taskService *services.TaskService
	server      *httptest.Server
}

func setupHubTest(t *testing.T) hubTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskAssignedNotification{},
	))

	notificationRepo := repository.NewNotificationRepository(db)
	notificationService := services.NewNotificationService(notificationRepo)
	hub := NewHub(notificationService)

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskService := services.NewTaskService(taskRepo, userRepo, hub)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	// The test stands in for the session middleware by trusting a header.
	r.GET("/ws/notifications", func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.GetHeader("X-Test-User"), 10, 64)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("user_id", userID)
		hub.HandleConnection(c)
	})

	server := httptest.NewServer(r)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		server.Close()
		sqlDB.Close()
	})

	return hubTestEnv{
		db:          db,
		hub:         hub,
		taskService: taskService,
		server:      server,
	}
}

func (env hubTestEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env hubTestEnv) dial(t *testing.T, userID uint64) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/notifications"
	header := http.Header{"X-Test-User": []string{fmt.Sprintf("%d", userID)}}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNotifications(t *testing.T, conn *websocket.Conn) []map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type          string           `json:"type"`
		Notifications []map[string]any `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "ReceiveNotifications", msg.Type)
	return msg.Notifications
}

func TestHub_InitialPushIsEmpty(t *testing.T) {
	env := setupHubTest(t)
	user := env.createUser(t, "watcher")

	conn := env.dial(t, user.ID)

	require.Empty(t, readNotifications(t, conn))
}

func TestHub_AssignmentLifecycle(t *testing.T) {
	env := setupHubTest(t)
	author := env.createUser(t, "author")
	userTwo := env.createUser(t, "user_two")
	userThree := env.createUser(t, "user_three")

	connTwo := env.dial(t, userTwo.ID)
	require.Empty(t, readNotifications(t, connTwo))

	connThree := env.dial(t, userThree.ID)
	require.Empty(t, readNotifications(t, connThree))

	// Author assigns the task to user two.
	task, err := env.taskService.CreateTask(services.CreateTaskInput{
		AuthorID:   author.ID,
		Title:      "prepare release notes",
		Deadline:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		AssigneeID: &userTwo.ID,
		Status:     models.TaskStatusToDo,
		Priority:   models.TaskPriorityHigh,
	})
	require.NoError(t, err)

	notifications := readNotifications(t, connTwo)
	require.Len(t, notifications, 1)
	require.EqualValues(t, task.ID, notifications[0]["task_id"])
	require.EqualValues(t, userTwo.ID, notifications[0]["assignee_id"])

	// Reassignment to user three empties user two's list and fills user
	// three's.
	_, err = env.taskService.UpdateTask(services.UpdateTaskInput{
		ID:         task.ID,
		ActorID:    author.ID,
		Title:      task.Title,
		Deadline:   task.Deadline,
		AssigneeID: &userThree.ID,
		Status:     task.Status,
		Priority:   task.Priority,
	})
	require.NoError(t, err)

	require.Empty(t, readNotifications(t, connTwo))

	notifications = readNotifications(t, connThree)
	require.Len(t, notifications, 1)
	require.EqualValues(t, task.ID, notifications[0]["task_id"])
	require.EqualValues(t, userThree.ID, notifications[0]["assignee_id"])
}

func TestHub_GetNotificationsCommand(t *testing.T) {
	env := setupHubTest(t)
	user := env.createUser(t, "watcher")

	require.NoError(t, env.db.Create(&models.TaskAssignedNotification{
		TaskID:     7,
		AssigneeID: user.ID,
		CreatedOn:  time.Now(),
	}).Error)

	conn := env.dial(t, user.ID)
	require.Len(t, readNotifications(t, conn), 1)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "GetNotifications"}))
	require.Len(t, readNotifications(t, conn), 1)
}

func TestHub_DismissNotification(t *testing.T) {
	env := setupHubTest(t)
	user := env.createUser(t, "watcher")

	require.NoError(t, env.db.Create(&models.TaskAssignedNotification{
		TaskID:     7,
		AssigneeID: user.ID,
		CreatedOn:  time.Now(),
	}).Error)

	conn := env.dial(t, user.ID)
	require.Len(t, readNotifications(t, conn), 1)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "DismissNotification",
		"task_id": 7,
	}))
	require.Empty(t, readNotifications(t, conn))

	var count int64
	env.db.Model(&models.TaskAssignedNotification{}).Count(&count)
	require.Equal(t, int64(0), count)

	// Dismissing an already-gone notification is a silent no-op.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "DismissNotification",
		"task_id": 7,
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "GetNotifications"}))
	require.Empty(t, readNotifications(t, conn))
}

func TestHub_NotifyUserWithoutConnection(t *testing.T) {
	env := setupHubTest(t)
	user := env.createUser(t, "offline")

	// Must not panic or block.
	env.hub.NotifyUser(user.ID)
}
