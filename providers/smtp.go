package providers

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/modernwebbuilds/forkitt-api/models"
)

// SMTPSender is the plain SMTP email transport, used when no SendGrid API
// key is configured.
type SMTPSender struct {
	host     string
	addr     string
	from     string
	password string
}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{
		host:     os.Getenv("FROM_EMAIL_SMTP"),
		addr:     os.Getenv("SMTP_ADDRESS"),
		from:     os.Getenv("FROM_EMAIL"),
		password: os.Getenv("FROM_EMAIL_PASSWORD"),
	}
}

func (s *SMTPSender) Provider() string {
	return models.ProviderSMTP
}

func (s *SMTPSender) Configured() bool {
	return s.addr != "" && s.from != "" && s.password != ""
}

func (s *SMTPSender) SendEmail(to, subject, body string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("smtp credentials are not configured")
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n\r\n%s",
		s.from, to, subject, body,
	)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(message)); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return "", nil
}
