package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HSouheill/portfolio_backend/models"
)

type fakeResolver struct {
	sessions map[string]*models.Session
	editor   string
}

func (f fakeResolver) CurrentUser(ctx context.Context, token string) (*models.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, errors.New("invalid")
}

func (f fakeResolver) IsEditor(s *models.Session) bool {
	return s != nil && s.Email == f.editor
}

func newTestServer() *echo.Echo {
	resolver := fakeResolver{
		sessions: map[string]*models.Session{
			"editor-token":  {Email: "me@example.com"},
			"visitor-token": {Email: "visitor@example.com"},
		},
		editor: "me@example.com",
	}

	e := echo.New()
	e.Use(LoadSession(resolver))
	e.GET("/whoami", func(c echo.Context) error {
		viewer := GetViewer(c)
		email := ""
		if s := GetSession(c); s != nil {
			email = s.Email
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"email": email, "editor": viewer.Editor})
	})
	e.PUT("/content", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireEditor(zap.NewNop()))
	e.GET("/private", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireSession())
	return e
}

func TestLoadSessionReadsBearerAndCookie(t *testing.T) {
	e := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer editor-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"email":"me@example.com","editor":true}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "visitor-token"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"email":"visitor@example.com","editor":false}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer bogus")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"","editor":false}`, rec.Body.String())
}

func TestRequireEditor(t *testing.T) {
	e := newTestServer()

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"invalid token", "bogus", http.StatusUnauthorized},
		{"visitor", "visitor-token", http.StatusForbidden},
		{"editor", "editor-token", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/content", nil)
			if tc.token != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireSession(t *testing.T) {
	e := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer visitor-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.SetEndpointLimit("/api/contact", rate.Every(time.Hour), 2)

	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/contact", func(c echo.Context) error { return c.NoContent(http.StatusAccepted) })
	e.GET("/api/home", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusAccepted, send(http.MethodPost, "/api/contact"))
	assert.Equal(t, http.StatusAccepted, send(http.MethodPost, "/api/contact"))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost, "/api/contact"))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodGet, "/api/home"), "blocked ip is blocked everywhere")

	limiter.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	limiter.pruneBlocked()
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/home"))
}

func TestRateLimiterForgetsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter()
	start := time.Now()
	limiter.now = func() time.Time { return start }

	limiter.getLimiter("198.51.100.1", "/api/home")
	limiter.getLimiter("198.51.100.2", "/api/contact")
	require.Len(t, limiter.ips, 2)

	limiter.now = func() time.Time { return start.Add(9 * time.Minute) }
	limiter.getLimiter("198.51.100.2", "/api/contact")

	limiter.now = func() time.Time { return start.Add(11 * time.Minute) }
	limiter.pruneIdle()
	assert.Len(t, limiter.ips, 1)
	assert.Contains(t, limiter.ips, "198.51.100.2|/api/contact")

	limiter.now = func() time.Time { return start.Add(30 * time.Minute) }
	limiter.pruneIdle()
	assert.Empty(t, limiter.ips)
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeadersWithConfig(SecurityConfig{
		ConnectDomains: []string{"https://identitytoolkit.googleapis.com"},
		FrameDomains:   []string{"https://accounts.google.com"},
		HSTS:           true,
	}))
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss: https://identitytoolkit.googleapis.com")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-src https://accounts.google.com")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "style-src 'self' 'unsafe-inline'")
}

func TestCORSConfig(t *testing.T) {
	prod := NewCORSConfig([]string{"https://me.dev"}, false)
	assert.Equal(t, []string{"https://me.dev"}, prod.AllowOrigins)

	dev := NewCORSConfig([]string{"https://me.dev"}, true)
	assert.Contains(t, dev.AllowOrigins, "http://localhost:3000")
	assert.Contains(t, dev.AllowOrigins, "https://me.dev")
}

func TestCSRFProtect(t *testing.T) {
	e := echo.New()
	e.Use(CSRFProtect([]string{"https://admin.example.com"}))
	e.POST("/api/about", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/api/about", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	cases := []struct {
		name        string
		method      string
		cookie      bool
		bearer      bool
		origin      string
		contentType string
		want        int
	}{
		{name: "anonymous", method: http.MethodPost, origin: "https://evil.example.net", contentType: "text/plain", want: http.StatusNoContent},
		{name: "read", method: http.MethodGet, cookie: true, origin: "https://evil.example.net", want: http.StatusNoContent},
		{name: "bearer", method: http.MethodPost, cookie: true, bearer: true, origin: "https://evil.example.net", want: http.StatusNoContent},
		{name: "same origin json", method: http.MethodPost, cookie: true, origin: "http://example.com", contentType: "application/json", want: http.StatusNoContent},
		{name: "allowed origin", method: http.MethodPost, cookie: true, origin: "https://admin.example.com", contentType: "application/json", want: http.StatusNoContent},
		{name: "foreign origin", method: http.MethodPost, cookie: true, origin: "https://evil.example.net", contentType: "application/json", want: http.StatusForbidden},
		{name: "form post", method: http.MethodPost, cookie: true, contentType: "application/x-www-form-urlencoded", want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "http://example.com/api/about", nil)
			if tc.cookie {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "token"})
			}
			if tc.bearer {
				req.Header.Set(echo.HeaderAuthorization, "Bearer token")
			}
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.contentType != "" {
				req.Header.Set(echo.HeaderContentType, tc.contentType)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
