package websocket

import (
	"context"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/services"
)

// Notification types
const (
	NotificationTypeConnected       = "connected"
	NotificationTypeContentUpdated  = "content_updated"
	NotificationTypeAuthState       = "auth_state"
	NotificationTypeMessageReceived = "message_received"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client. Email is empty for
// anonymous visitors.
type Client struct {
	Email  string
	Editor bool
	Conn   *websocket.Conn

	writeMu sync.Mutex
}

// WriteJSON serializes writes, as a websocket connection allows only one
// concurrent writer
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of active clients and pushes notifications to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run is the hub's event loop. It closes every connection and returns when
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Conn.Close()
	}
}

// AuthenticateClient attaches a signed-in identity to an open connection
func (h *Hub) AuthenticateClient(client *Client, email string, editor bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Email = email
	client.Editor = editor
}

// ClientCount is the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) matching(match func(*Client) bool) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*Client
	for client := range h.clients {
		if match(client) {
			out = append(out, client)
		}
	}
	return out
}

func (h *Hub) send(clients []*Client, notification Notification) {
	for _, client := range clients {
		if err := client.WriteJSON(notification); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
		}
	}
}

// Broadcast sends a notification to every connected client
func (h *Hub) Broadcast(notification Notification) {
	h.send(h.matching(func(*Client) bool { return true }), notification)
}

// SendToEmail sends a notification to every connection of one user
func (h *Hub) SendToEmail(email string, notification Notification) int {
	clients := h.matching(func(c *Client) bool {
		return c.Email != "" && strings.EqualFold(c.Email, email)
	})
	h.send(clients, notification)
	return len(clients)
}

// NotifyContentUpdated tells every visitor that a section changed and
// should be fetched again
func (h *Hub) NotifyContentUpdated(section string) {
	h.Broadcast(Notification{
		Type:    NotificationTypeContentUpdated,
		Message: section + " updated",
		Data:    map[string]string{"section": section},
	})
}

// NotifyMessageReceived tells the editor's open pages about a new message
func (h *Hub) NotifyMessageReceived(msg models.ContactMessage) {
	clients := h.matching(func(c *Client) bool { return c.Editor })
	h.send(clients, Notification{
		Type:    NotificationTypeMessageReceived,
		Message: "New message from " + msg.Name,
		Data:    msg,
	})
}

// HandleAuthEvent forwards sign-in and sign-out to the user's connections.
// A signed-out connection is downgraded to anonymous.
func (h *Hub) HandleAuthEvent(event services.AuthEvent) {
	if event.Session == nil {
		return
	}
	email := event.Session.Email
	h.SendToEmail(email, Notification{
		Type:    NotificationTypeAuthState,
		Message: string(event.Type),
		Data:    event,
	})

	if event.Type == services.AuthSignedOut {
		h.mu.Lock()
		for client := range h.clients {
			if strings.EqualFold(client.Email, email) {
				client.Email = ""
				client.Editor = false
			}
		}
		h.mu.Unlock()
	}
}
