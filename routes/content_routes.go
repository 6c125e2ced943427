package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/portfolio_backend/middleware"
)

// RegisterContentRoutes sets up the section, project and contact routes.
// Reads are public; writes require the editor.
func RegisterContentRoutes(e *echo.Echo, h Handlers) {
	api := e.Group("/api")

	// Public content routes
	api.GET("/home", h.Content.GetHome)
	api.GET("/about", h.Content.GetAbout)
	api.GET("/skills", h.Content.GetSkills)
	api.GET("/projects", h.Projects.GetProjects)
	api.GET("/projects/:id/qrcode", h.Projects.GetProjectQRCode)
	api.POST("/contact", h.Contact.SendMessage)

	// Editor routes
	editor := api.Group("", middleware.RequireEditor(h.Logger))
	editor.PUT("/about", h.Content.UpdateAbout)
	editor.PUT("/skills", h.Content.UpsertSkillGroup)
	editor.POST("/projects", h.Projects.CreateProject)
	editor.PUT("/projects/:id", h.Projects.UpdateProject)
	editor.DELETE("/projects/:id", h.Projects.DeleteProject)
	editor.POST("/projects/:id/image", h.Projects.UploadProjectImage)
}
