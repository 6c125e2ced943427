// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
)

// RequireSession rejects callers without a valid session
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetSession(c) == nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication required",
				})
			}
			return next(c)
		}
	}
}

// RequireEditor lets only the configured editor through. It must run after
// LoadSession.
func RequireEditor(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := GetSession(c)
			if session == nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication required",
				})
			}

			if !GetViewer(c).Editor {
				logger.Warn("editor access denied",
					zap.String("email", session.Email),
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
				)
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Only the site editor can change content",
				})
			}
			return next(c)
		}
	}
}
