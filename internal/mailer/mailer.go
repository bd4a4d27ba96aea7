// Package mailer dispatches transactional email over SMTP.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"tekblog/internal/config"
	"tekblog/internal/observability"
)

// Mailer is the mail-dispatch contract consumed by the moderation and
// verification flows. Delivery failures never roll back the state change
// that triggered the notice.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
}

// NewSMTPMailer builds a mailer from config. When SMTP settings are absent
// the mailer is disabled and Send becomes a logged no-op, so development
// environments work without a relay.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPFrom != ""
	if !enabled {
		observability.GlobalLogger.Warn("mailer disabled: missing SMTP configuration")
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		enabled:  enabled,
	}
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.enabled {
		observability.GlobalLogger.Info("mailer disabled, dropping message",
			slog.String("to", to), slog.String("subject", subject))
		return nil
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nFrom: TekBlog <%s>\r\nSubject: %s\r\n%s\r\n%s",
		to, m.from, subject, mime, body))

	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}
