package utils

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/HSouheill/portfolio_backend/config"
	"github.com/HSouheill/portfolio_backend/models"
)

// Sender delivers one composed email
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails the editor about new contact messages. It does nothing
// when SMTP is not configured.
type Mailer struct {
	sender Sender
	from   string
	to     string
	site   string
	logger *zap.Logger
}

// NewMailer creates a Mailer from the SMTP settings
func NewMailer(cfg *config.Config, logger *zap.Logger) *Mailer {
	m := &Mailer{
		from:   cfg.SMTPUser,
		to:     cfg.EditorEmail,
		site:   cfg.SiteTitle,
		logger: logger,
	}
	if cfg.SMTPHost != "" {
		m.sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}
	return m
}

// NewMailerWithSender is NewMailer with an explicit transport
func NewMailerWithSender(sender Sender, from, to, site string, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, from: from, to: to, site: site, logger: logger}
}

// Enabled reports whether emails will actually be sent
func (m *Mailer) Enabled() bool {
	return m.sender != nil && m.to != ""
}

// ComposeContactNotification builds the email for a visitor's message
func (m *Mailer) ComposeContactNotification(msg models.ContactMessage) *gomail.Message {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", m.to)
	message.SetHeader("Reply-To", msg.Email)
	message.SetHeader("Subject", fmt.Sprintf("[%s] New message from %s", m.site, msg.Name))
	message.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message))
	return message
}

// NotifyContactMessage emails the editor. Failures are logged and returned.
func (m *Mailer) NotifyContactMessage(msg models.ContactMessage) error {
	if !m.Enabled() {
		return nil
	}
	if err := m.sender.DialAndSend(m.ComposeContactNotification(msg)); err != nil {
		m.logger.Error("failed to email contact notification", zap.String("to", m.to), zap.Error(err))
		return fmt.Errorf("sending contact notification: %w", err)
	}
	return nil
}
