package api

import (
	"sync"
	"time"

	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Notification types pushed to the browser
const (
	NotifyChatAnswer = "chat_answer"
	NotifyIngestDone = "ingest_done"
)

// Notification represents a real-time event for one browser session
type Notification struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Time    time.Time              `json:"time"`
}

// NotificationHub fans notifications out to the WebSocket connections of a
// session. A session may have several tabs open, each its own subscriber.
type NotificationHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Notification // session -> subscriber -> channel
	keepAlive   time.Duration
}

// NewNotificationHub creates an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		subscribers: make(map[string]map[string]chan Notification),
		keepAlive:   30 * time.Second,
	}
}

// Subscribe registers a listener for a session. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (h *NotificationHub) Subscribe(sessionID string) (string, <-chan Notification, func()) {
	subscriberID := uuid.New().String()
	ch := make(chan Notification, 10)

	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[string]chan Notification)
	}
	h.subscribers[sessionID][subscriberID] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subscribers[sessionID]; ok {
				delete(subs, subscriberID)
				if len(subs) == 0 {
					delete(h.subscribers, sessionID)
				}
			}
			close(ch)
		})
	}

	return subscriberID, ch, cancel
}

// Publish delivers a notification to every subscriber of a session and
// returns how many received it. Full subscriber buffers are skipped.
func (h *NotificationHub) Publish(sessionID string, n Notification) int {
	n = stamp(n)

	h.mu.RLock()
	defer h.mu.RUnlock()

	return deliver(h.subscribers[sessionID], n)
}

// Broadcast delivers a notification to every connected session
func (h *NotificationHub) Broadcast(n Notification) int {
	n = stamp(n)

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, subs := range h.subscribers {
		delivered += deliver(subs, n)
	}
	utils.Log.Debug("Broadcast notification: type=%s delivered=%d", n.Type, delivered)
	return delivered
}

// SubscriberCount returns the number of live subscribers for a session
func (h *NotificationHub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

func stamp(n Notification) Notification {
	n.ID = uuid.New().String()
	n.Time = time.Now()
	return n
}

func deliver(subs map[string]chan Notification, n Notification) int {
	delivered := 0
	for subscriberID, ch := range subs {
		select {
		case ch <- n:
			delivered++
		default:
			utils.Log.Warn("Notification channel full for subscriber %s", subscriberID)
		}
	}
	return delivered
}

// Upgrade guards the WebSocket route: it requires an upgrade request and a
// valid stream ticket, and stores the ticket's session id for the handler.
func (h *NotificationHub) Upgrade(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		sessionID, err := ParseStreamTicket(c.Query("ticket"), secret)
		if err != nil {
			return utils.NewAppError(fiber.StatusUnauthorized, "Invalid stream ticket", err)
		}
		c.Locals("session_id", sessionID)
		return c.Next()
	}
}

// HandleWebSocket streams a session's notifications as JSON frames
func (h *NotificationHub) HandleWebSocket(c *websocket.Conn) {
	sessionID, _ := c.Locals("session_id").(string)
	subscriberID, ch, cancel := h.Subscribe(sessionID)
	log := utils.Log.WithFields(map[string]interface{}{"session": shortID(sessionID), "subscriber": subscriberID})

	defer func() {
		cancel()
		c.Close()
		log.Info("WebSocket subscriber disconnected")
	}()
	log.Info("WebSocket subscriber connected")

	// The browser never sends anything; reading only detects the close.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := c.WriteJSON(n); err != nil {
				log.Error("Failed to send WebSocket notification: %v", err)
				return
			}
		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
