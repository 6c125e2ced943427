package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/security"
)

// CSRFProtect rejects cookie-authenticated writes that come from a foreign
// origin or use a content type a cross-site form could send. Bearer token
// requests are not affected.
func CSRFProtect(allowedOrigins []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if req.Header.Get(echo.HeaderAuthorization) != "" {
				return next(c)
			}
			if _, err := c.Cookie(SessionCookieName); err != nil {
				return next(c)
			}

			if !security.TrustedOrigin(req, allowedOrigins) || !security.ValidateContentType(req.Header.Get(echo.HeaderContentType)) {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Cross-site request rejected",
				})
			}
			return next(c)
		}
	}
}
