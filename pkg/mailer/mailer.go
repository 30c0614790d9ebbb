package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/realhub/condo-api/pkg/logger"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Mailer sends notification mail over plain SMTP. Delivery is best effort;
// callers are expected to log and drop errors.
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

func (m *Mailer) Send(to, subject, body string) error {
	if !m.Enabled() {
		logger.Debug("mailer disabled, dropping mail", "to", to, "subject", subject)
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
