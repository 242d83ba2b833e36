package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer outbound email sender. Every caller treats delivery as
// best effort: failures are logged by the caller and never propagated.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig SMTP settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// smtpMailer gomail-backed SMTP sender
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP mailer
func NewSMTP(cfg *SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Noop a mailer that silently drops everything. Used when SMTP is not
// configured so message sending keeps working in development.
type Noop struct{}

func (Noop) Send(to, subject, body string) error { return nil }
