package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/services"
	"github.com/HSouheill/portfolio_backend/utils"
)

// Authenticator is the auth gateway as the handlers use it
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error)
	SignInWithProvider(ctx context.Context, provider, idToken string) (*models.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	IsEditor(session *models.Session) bool
}

// AuthController contains authentication logic
type AuthController struct {
	auth          Authenticator
	logger        *zap.Logger
	secureCookies bool
}

// NewAuthController creates a new auth controller
func NewAuthController(auth Authenticator, logger *zap.Logger, secureCookies bool) *AuthController {
	return &AuthController{
		auth:          auth,
		logger:        logger.Named("auth"),
		secureCookies: secureCookies,
	}
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, utils.ValidationMessage(err))
	}

	resp, err := ac.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return ac.signInFailed(c, err, "password")
	}
	return ac.signedIn(c, resp)
}

// OAuthLogin handles POST /api/auth/oauth with the ID token from a popup
func (ac *AuthController) OAuthLogin(c echo.Context) error {
	var req models.OAuthRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, utils.ValidationMessage(err))
	}

	resp, err := ac.auth.SignInWithProvider(c.Request().Context(), req.Provider, req.IDToken)
	if err != nil {
		return ac.signInFailed(c, err, req.Provider)
	}
	return ac.signedIn(c, resp)
}

// Logout handles POST /api/auth/logout. Signing out without a session is
// not an error.
func (ac *AuthController) Logout(c echo.Context) error {
	token := middleware.GetSessionToken(c)
	if token != "" {
		if err := ac.auth.SignOut(c.Request().Context(), token); err != nil && !errors.Is(err, services.ErrInvalidSession) {
			ac.logger.Error("sign-out failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to sign out",
			})
		}
	}

	c.SetCookie(ac.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signed out",
	})
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(c echo.Context) error {
	session := middleware.GetSession(c)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Current user",
		Data: map[string]interface{}{
			"user":     session,
			"isEditor": ac.auth.IsEditor(session),
		},
	})
}

func (ac *AuthController) signedIn(c echo.Context, resp *models.AuthResponse) error {
	c.SetCookie(ac.sessionCookie(resp.Token, resp.User.ExpiresAt))
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signed in",
		Data:    resp,
	})
}

func (ac *AuthController) signInFailed(c echo.Context, err error, provider string) error {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		ac.logger.Info("sign-in rejected", zap.String("provider", provider), zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	case errors.Is(err, services.ErrUnsupportedProvider):
		return badRequest(c, "Unsupported sign-in provider")
	default:
		ac.logger.Error("sign-in failed", zap.String("provider", provider), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Sign-in is temporarily unavailable",
		})
	}
}

func (ac *AuthController) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   ac.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
