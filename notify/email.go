// Package notify sends the end-of-run summary over SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Emailer sends plain-text mail through one SMTP server.
type Emailer struct {
	Host     string
	Port     int
	From     string
	Password string
}

// Send delivers body to every recipient in one message. An empty password
// skips authentication, which keeps local debug servers usable.
func (e *Emailer) Send(to []string, subject, body string) error {
	if e.Host == "" || e.From == "" {
		return fmt.Errorf("notify: host and from are required")
	}
	if len(to) == 0 {
		return fmt.Errorf("notify: no recipients")
	}

	port := e.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", e.Host, port)

	var auth smtp.Auth
	if e.Password != "" {
		auth = smtp.PlainAuth("", e.From, e.Password, e.Host)
	}

	msg := strings.Join([]string{
		"From: " + e.From,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, e.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}
