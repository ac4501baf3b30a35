package infra

import (
	"fmt"
	"net/smtp"

	"ananda/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending saludos y notificaciones.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	from     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:     cfg.SMTPFrom,
	}
}

// Send delivers a plain-text email (saludos de cumpleaños, reset de contraseña).
func (m *Mailer) Send(to, subject, body string) error {
	return m.send(to, subject, body, "")
}

// SendConAdjunto delivers an email with a file attached (ticket PDF).
func (m *Mailer) SendConAdjunto(to, subject, body, filePath string) error {
	return m.send(to, subject, body, filePath)
}

func (m *Mailer) send(to, subject, body, attachPath string) error {
	e := email.NewEmail()
	e.From = m.from
	if e.From == "" {
		e.From = m.user
	}
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if attachPath != "" {
		if _, err := e.AttachFile(attachPath); err != nil {
			return fmt.Errorf("mailer: attach file: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
