// Package mailer delivers queued e-mail notifications.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/customer-auth/internal/logging"
	"github.com/iliyamo/customer-auth/internal/queue"
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n queue.EmailNotification) error
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends plain-text e-mail through an SMTP relay.
type SMTPSender struct {
	dialer dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(_ context.Context, n queue.EmailNotification) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", n.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender only logs notifications.  Used when no SMTP relay is configured.
type LogSender struct {
	Log logging.Logger
}

func (s LogSender) Send(ctx context.Context, n queue.EmailNotification) error {
	s.Log.Info(ctx, "email not sent: smtp not configured", "to", n.To, "subject", n.Subject)
	s.Log.Debug(ctx, "email body", "to", n.To, "body", n.Body)
	return nil
}
