package notification

import (
	"fmt"

	"github.com/profactive/backend/internal/models"
	"gopkg.in/mail.v2"
)

// Dialer sends prepared messages. *mail.Dialer implements it.
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender delivers emails with gopkg.in/mail.v2
type SMTPSender struct {
	dialer Dialer
	from   string
}

// NewSMTPSender creates a sender for the SMTP server
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return NewSMTPSenderWithDialer(mail.NewDialer(host, port, username, password), from)
}

// NewSMTPSenderWithDialer creates a sender over an existing dialer
func NewSMTPSenderWithDialer(dialer Dialer, from string) *SMTPSender {
	return &SMTPSender{
		dialer: dialer,
		from:   from,
	}
}

// SendEmail delivers one plain text email
func (s *SMTPSender) SendEmail(email models.Email) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
