// middleware/security_headers.go
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type SecurityConfig struct {
	// ConnectDomains are extra origins the page may call, such as the
	// identity provider endpoints
	ConnectDomains []string
	// ScriptDomains are extra origins scripts may load from
	ScriptDomains []string

	// StyleDomains and FrameDomains serve embedded sign-in widgets
	StyleDomains []string
	FrameDomains []string
	HSTS         bool
}

func SecurityHeadersWithConfig(config SecurityConfig) echo.MiddlewareFunc {
	csp := buildCSP(config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
			h.Set("Content-Security-Policy", csp)
			if config.HSTS {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			h.Del("Server")
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}

func buildCSP(config SecurityConfig) string {
	csp := []string{
		"default-src 'self'",
		"img-src 'self' data: https:",
	}

	style := "style-src 'self' 'unsafe-inline'"
	if len(config.StyleDomains) > 0 {
		style += " " + strings.Join(config.StyleDomains, " ")
	}
	csp = append(csp, style)

	script := "script-src 'self'"
	if len(config.ScriptDomains) > 0 {
		script += " " + strings.Join(config.ScriptDomains, " ")
	}
	csp = append(csp, script)

	connect := "connect-src 'self' ws: wss:"
	if len(config.ConnectDomains) > 0 {
		connect += " " + strings.Join(config.ConnectDomains, " ")
	}
	csp = append(csp, connect)

	if len(config.FrameDomains) > 0 {
		csp = append(csp, "frame-src "+strings.Join(config.FrameDomains, " "))
	}

	return strings.Join(csp, "; ")
}
