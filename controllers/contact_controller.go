package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
	"github.com/HSouheill/portfolio_backend/sections"
	"github.com/HSouheill/portfolio_backend/utils"
)

// ContactMailer forwards a stored message to the site owner
type ContactMailer interface {
	NotifyContactMessage(msg models.ContactMessage) error
}

// ContactResult is what the page needs to render the form after a submit
type ContactResult struct {
	State        sections.ContactState  `json:"state"`
	ResetAfterMs int64                  `json:"resetAfterMs"`
	Fields       *models.ContactMessage `json:"fields,omitempty"`
}

// ContactController handles visitor messages
type ContactController struct {
	repo       ContentRepository
	mailer     ContactMailer
	notifier   Notifier
	resetAfter time.Duration
	logger     *zap.Logger
}

// NewContactController creates a new contact controller
func NewContactController(repo ContentRepository, mailer ContactMailer, notifier Notifier, resetAfter time.Duration, logger *zap.Logger) *ContactController {
	return &ContactController{
		repo:       repo,
		mailer:     mailer,
		notifier:   notifier,
		resetAfter: resetAfter,
		logger:     logger.Named("contact"),
	}
}

// SendMessage handles POST /api/contact
func (cc *ContactController) SendMessage(c echo.Context) error {
	var msg models.ContactMessage
	if err := c.Bind(&msg); err != nil {
		return badRequest(c, "Invalid request body")
	}
	msg = utils.SanitizeContactMessage(msg)
	if err := c.Validate(&msg); err != nil {
		return badRequest(c, utils.ValidationMessage(err))
	}

	form := sections.NewContactForm(cc.deliver, cc.resetAfter)
	defer form.Stop()
	form.SetFields(msg)

	result := ContactResult{ResetAfterMs: form.ResetAfter().Milliseconds()}
	if err := form.Submit(c.Request().Context()); err != nil {
		cc.logger.Error("failed to store contact message", zap.String("from", msg.Email), zap.Error(err))
		fields := form.Fields()
		result.State = form.State()
		result.Fields = &fields
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send message. Please try again.",
			Data:    result,
		})
	}

	result.State = form.State()
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Message sent successfully!",
		Data:    result,
	})
}

// deliver stores the message, then mails and pushes it. Only the store
// decides the outcome.
func (cc *ContactController) deliver(ctx context.Context, msg models.ContactMessage) error {
	msg.SentAt = time.Now().UTC()
	id, err := cc.repo.AppendMessage(ctx, msg)
	if err != nil {
		return err
	}
	cc.logger.Info("contact message stored", zap.String("id", id), zap.String("from", msg.Email))

	if cc.mailer != nil {
		if err := cc.mailer.NotifyContactMessage(msg); err != nil {
			cc.logger.Warn("failed to email contact message", zap.String("id", id), zap.Error(err))
		}
	}
	cc.notifier.NotifyMessageReceived(msg)
	return nil
}
