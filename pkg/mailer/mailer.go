package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/getter-shop/getter-backend/pkg/logger"
)

// Mailer sends plain-text transactional email. The SMTP implementation
// is used in production; tests and local runs use the noop variant.
type Mailer interface {
	Send(to, subject, body string) error
}

// Config holds SMTP connection settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	config Config
}

// NewSMTPMailer creates a Mailer backed by net/smtp
func NewSMTPMailer(cfg Config) Mailer {
	return &smtpMailer{config: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	headers := []string{
		fmt.Sprintf("From: %s", m.config.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg)); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Debug("Email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

type noopMailer struct{}

// NewNoopMailer creates a Mailer that only logs. Used when SMTP is not
// configured so the inactivity jobs stay runnable in development.
func NewNoopMailer() Mailer {
	return &noopMailer{}
}

func (m *noopMailer) Send(to, subject, body string) error {
	logger.Info("Email delivery skipped (SMTP not configured)", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}
