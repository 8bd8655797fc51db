// Package mailer sends transactional email through an SMTP relay.
// The core depends only on the Mailer interface; when SMTP is not
// configured the no-op implementation logs a warning and reports
// failure, so callers can distinguish "created but email failed"
// from a failed creation.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a message and reports success. Implementations do
// not retry; the boolean is surfaced to the caller.
type Mailer interface {
	Send(msg Message) bool
}

// SMTPMailer delivers mail through a single SMTP host with PLAIN
// auth over STARTTLS, the common shape for transactional providers.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSMTPMailer returns an SMTPMailer, or a disabled no-op mailer
// when host is empty.
func NewSMTPMailer(host, port, username, password, from string) Mailer {
	if host == "" {
		return disabled{}
	}
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password, From: from}
}

// Send builds a multipart-free MIME message, preferring HTML when
// present, and hands it to the relay. Errors are logged and reported
// as false; the caller decides whether that is fatal.
func (m *SMTPMailer) Send(msg Message) bool {
	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTML != "" {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.HTML)
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text)
	}

	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{msg.To}, []byte(b.String())); err != nil {
		log.Printf("mailer: send to %s failed: %v", msg.To, err)
		return false
	}
	return true
}

// disabled is the fallback when no SMTP host is configured.
type disabled struct{}

func (disabled) Send(msg Message) bool {
	log.Printf("mailer: SMTP not configured, dropping mail to %s (%q)", msg.To, msg.Subject)
	return false
}
