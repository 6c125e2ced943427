package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/portfolio_backend/controllers"
	"github.com/HSouheill/portfolio_backend/middleware"
)

// RegisterAuthRoutes sets up sign-in, sign-out and current user routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/oauth", authController.OAuthLogin)
	e.POST("/api/auth/logout", authController.Logout)
	e.GET("/api/auth/me", authController.Me, middleware.RequireSession())
}
