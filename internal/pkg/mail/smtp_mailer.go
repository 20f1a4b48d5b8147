package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/activehq/activehq/internal/pkg/env"
)

// SendMail delivers a plain-text email through the configured SMTP relay.
// Reminder bodies are plain text, so no HTML part is built.
func SendMail(to, subject, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "no-reply@activehq.local")

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n"

	addr := fmt.Sprintf("%s:%s", host, port)
	if err := smtp.SendMail(addr, auth, sender, []string{to}, []byte(headers+body)); err != nil {
		log.Printf("SMTP send to %s failed: %v", to, err)
		return err
	}
	log.Printf("Email sent to %s via %s", to, addr)
	return nil
}
