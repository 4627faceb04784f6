// Package realtime implements the per-user notification push channel over
// websockets. Each authenticated user may hold any number of connections;
// every push delivers the user's full current notification list.
package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskhub/task-manager-api/internal/dto"
	apierrors "github.com/taskhub/task-manager-api/internal/errors"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/services"
)

// Client-to-server command types.
const (
	msgGetNotifications    = "GetNotifications"
	msgDismissNotification = "DismissNotification"
)

// Server-to-client message type.
const msgReceiveNotifications = "ReceiveNotifications"

type clientMessage struct {
	Type   string `json:"type"`
	TaskID uint64 `json:"task_id,omitempty"`
}

type serverMessage struct {
	Type          string                `json:"type"`
	Notifications []dto.NotificationDTO `json:"notifications"`
}

// Hub tracks live connections per user and pushes notification lists to
// them. It implements services.Notifier.
type Hub struct {
	notifications *services.NotificationService
	upgrader      websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]map[*client]struct{}
}

// NewHub creates a new Hub.
func NewHub(notifications *services.NotificationService) *Hub {
	return &Hub{
		notifications: notifications,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware; the
			// session cookie still gates the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]map[*client]struct{}),
	}
}

// HandleConnection upgrades an authenticated request to a websocket and
// serves it until the peer disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("websocket upgrade failed for user %d: %v", userID, err)
		return
	}

	cl := newClient(conn, userID)
	h.register(cl)
	defer h.unregister(cl)

	go cl.writePump()

	// Initial push so the client starts with its current list.
	h.pushTo(cl)

	h.readLoop(cl)
}

// NotifyUser pushes the user's current notification list to each of their
// live connections. No connections is a no-op.
func (h *Hub) NotifyUser(userID uint64) {
	message, ok := h.buildListMessage(userID)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients[userID] {
		cl.send(message)
	}
}

func (h *Hub) readLoop(cl *client) {
	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error for user %d: %v", cl.userID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("discarding malformed websocket message from user %d: %v", cl.userID, err)
			continue
		}

		switch msg.Type {
		case msgGetNotifications:
			h.pushTo(cl)

		case msgDismissNotification:
			if err := h.notifications.Dismiss(msg.TaskID); err != nil {
				log.Printf("failed to dismiss notification for task %d: %v", msg.TaskID, err)
				continue
			}
			// Every connection of this user sees the shortened list.
			h.NotifyUser(cl.userID)

		default:
			log.Printf("unknown websocket command %q from user %d", msg.Type, cl.userID)
		}
	}
}

// pushTo sends the user's current list to a single connection.
func (h *Hub) pushTo(cl *client) {
	message, ok := h.buildListMessage(cl.userID)
	if !ok {
		return
	}
	cl.send(message)
}

func (h *Hub) buildListMessage(userID uint64) ([]byte, bool) {
	notifications, err := h.notifications.ListForUser(userID)
	if err != nil {
		log.Printf("failed to load notifications for user %d: %v", userID, err)
		return nil, false
	}

	message, err := json.Marshal(serverMessage{
		Type:          msgReceiveNotifications,
		Notifications: dto.ToNotificationDTOs(notifications),
	})
	if err != nil {
		log.Printf("failed to encode notifications for user %d: %v", userID, err)
		return nil, false
	}

	return message, true
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[cl.userID] == nil {
		h.clients[cl.userID] = make(map[*client]struct{})
	}
	h.clients[cl.userID][cl] = struct{}{}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if set, ok := h.clients[cl.userID]; ok {
		delete(set, cl)
		if len(set) == 0 {
			delete(h.clients, cl.userID)
		}
	}
	h.mu.Unlock()

	cl.close()
}
