package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/web"
)

// RegisterFileRoutes sets up uploaded image and static asset serving
func RegisterFileRoutes(e *echo.Echo, uploadDir string, logger *zap.Logger) {
	e.GET("/uploads/*", ServeUpload(uploadDir, logger))
	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))
}

// ServeUpload serves files below uploadDir with traversal and listing checks
func ServeUpload(uploadDir string, logger *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Param("*")
		if path == "" {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "File not found",
			})
		}

		// Clean the path to prevent directory traversal
		cleanPath := filepath.Clean("/" + path)
		if strings.Contains(cleanPath, "..") {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied - invalid path",
			})
		}
		fullPath := filepath.Join(uploadDir, cleanPath)

		info, err := os.Stat(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return c.JSON(http.StatusNotFound, models.Response{
					Status:  http.StatusNotFound,
					Message: "File not found",
				})
			}
			logger.Error("error accessing upload", zap.String("path", fullPath), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Error accessing file",
			})
		}

		// Don't allow directory listing
		if info.IsDir() {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied - directory listing not allowed",
			})
		}

		// Upload names never repeat
		c.Response().Header().Set("Cache-Control", "public, max-age=31536000")
		c.Response().Header().Set("Expires", time.Now().AddDate(1, 0, 0).Format(time.RFC1123))
		return c.File(fullPath)
	}
}
