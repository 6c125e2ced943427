// middleware/jwt_middleware.go
package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/sections"
)

// SessionCookieName is the HttpOnly cookie carrying the session token
const SessionCookieName = "session_token"

// Context keys set by LoadSession
const (
	sessionKey = "session"
	viewerKey  = "viewer"
	tokenKey   = "sessionToken"
)

// SessionResolver turns a session token into a session
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.Session, error)
	IsEditor(session *models.Session) bool
}

// LoadSession resolves the caller's session when one is presented and
// stores it with the derived viewer in the context. Requests without a
// valid session continue as anonymous visitors.
func LoadSession(auth SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(viewerKey, sections.Anonymous)

			token := ExtractToken(c)
			if token == "" {
				return next(c)
			}

			session, err := auth.CurrentUser(c.Request().Context(), token)
			if err != nil {
				return next(c)
			}

			c.Set(tokenKey, token)
			c.Set(sessionKey, session)
			c.Set(viewerKey, sections.Viewer{Session: session, Editor: auth.IsEditor(session)})
			return next(c)
		}
	}
}

// ExtractToken reads the session token from "Authorization: Bearer" or the
// session cookie
func ExtractToken(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetSession returns the resolved session, or nil for anonymous callers
func GetSession(c echo.Context) *models.Session {
	session, _ := c.Get(sessionKey).(*models.Session)
	return session
}

// GetSessionToken returns the token the session was resolved from
func GetSessionToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}

// GetViewer returns who is looking at the page
func GetViewer(c echo.Context) sections.Viewer {
	viewer, ok := c.Get(viewerKey).(sections.Viewer)
	if !ok {
		return sections.Anonymous
	}
	return viewer
}
