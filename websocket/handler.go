package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/portfolio_backend/models"
)

// SessionResolver turns a session token sent over the socket into a session
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.Session, error)
	IsEditor(session *models.Session) bool
}

// NewUpgrader accepts same-origin requests and the configured origins
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
		},
	}
}

// HandleWebSocket upgrades the request and registers the connection. The
// session, if any, comes from the request; an anonymous socket can sign in
// later by sending "AUTH:<token>".
func HandleWebSocket(c echo.Context, hub *Hub, upgrader websocket.Upgrader, auth SessionResolver, session *models.Session) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{Conn: conn}
	if session != nil {
		client.Email = session.Email
		client.Editor = auth.IsEditor(session)
	}

	if !hub.Register(client) {
		conn.Close()
		return nil
	}

	welcome := Notification{
		Type:    NotificationTypeConnected,
		Message: "WebSocket connection established",
	}
	if session == nil {
		welcome.Message = "WebSocket connection established. Send AUTH:<token> to receive editor notifications."
	}
	_ = client.WriteJSON(welcome)

	go func() {
		defer hub.Unregister(client)

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}

			text := string(message)
			if !strings.HasPrefix(text, "AUTH:") {
				continue
			}
			token := strings.TrimSpace(strings.TrimPrefix(text, "AUTH:"))
			s, err := auth.CurrentUser(context.Background(), token)
			if err != nil {
				_ = client.WriteJSON(Notification{
					Type:    NotificationTypeAuthState,
					Message: "invalid session",
				})
				continue
			}
			editor := auth.IsEditor(s)
			hub.AuthenticateClient(client, s.Email, editor)
			_ = client.WriteJSON(Notification{
				Type:    NotificationTypeAuthState,
				Message: "authenticated",
				Data:    map[string]interface{}{"email": s.Email, "isEditor": editor},
			})
		}
	}()

	return nil
}
