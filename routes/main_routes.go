package routes

import (
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/controllers"
	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/services"
	ws "github.com/HSouheill/portfolio_backend/websocket"
)

// Handlers bundles the controllers and shared services the routes use
type Handlers struct {
	Auth     *controllers.AuthController
	Content  *controllers.ContentController
	Projects *controllers.ProjectController
	Contact  *controllers.ContactController
	Page     *controllers.PageController

	AuthService *services.AuthService
	Hub         *ws.Hub
	Upgrader    websocket.Upgrader
	Origins     []string
	UploadDir   string
	Logger      *zap.Logger
}

// SetupRoutes configures all routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h Handlers) {
	// Every route sees the caller's session, if any
	e.Use(middleware.LoadSession(h.AuthService))
	e.Use(middleware.CSRFProtect(h.Origins))

	e.GET("/", h.Page.Index)
	e.GET("/health", h.Page.Health)

	RegisterAuthRoutes(e, h.Auth)
	RegisterContentRoutes(e, h)
	RegisterFileRoutes(e, h.UploadDir, h.Logger)

	e.GET("/api/ws", func(c echo.Context) error {
		return ws.HandleWebSocket(c, h.Hub, h.Upgrader, h.AuthService, middleware.GetSession(c))
	})
}
