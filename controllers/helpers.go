package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/repositories"
	"github.com/HSouheill/portfolio_backend/sections"
)

// ContentRepository is everything the content handlers need from storage
type ContentRepository interface {
	sections.ContentRepository
	GetProject(ctx context.Context, id string) (*models.Project, error)
	SetProjectImage(ctx context.Context, id, imageURL string) error
	AppendMessage(ctx context.Context, msg models.ContactMessage) (string, error)
}

// Notifier pushes live updates to open pages
type Notifier interface {
	NotifyContentUpdated(section string)
	NotifyMessageReceived(msg models.ContactMessage)
}

// editAndSave walks a section through the editor flow: load, begin editing,
// replace the draft with the submitted form, save
func editAndSave[T, F any](ctx context.Context, s *sections.Section[T, F], seed func(T) F, draft F) error {
	s.Load(ctx)
	if err := s.BeginEdit(seed); err != nil {
		return err
	}
	if err := s.SetDraft(draft); err != nil {
		return err
	}
	return s.Save(ctx)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, sections.ErrNotEditor):
		return http.StatusForbidden, "Only the site editor can change content"
	case errors.Is(err, sections.ErrNotReady):
		return http.StatusServiceUnavailable, "Content is currently unavailable"
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Failed to save changes"
	}
}

// respondError logs unexpected failures and answers with the envelope.
// data, when given, lets the client keep showing its draft.
func respondError(c echo.Context, logger *zap.Logger, err error, data interface{}) error {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message,
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}
