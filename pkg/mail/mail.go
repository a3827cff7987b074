// Package mail sends HTML email over SMTP with a fluent builder:
//
//	err := mail.To(user.Email).
//	    Subject("Your order A1B2C3D4").
//	    Body(html).
//	    Send()
//
// Delivery goes through the package-level Transport, which tests replace
// to capture outgoing messages.
package mail

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/shashiranjanraj/cafe/config"
)

// ErrNotConfigured is returned when no SMTP credentials are set.
var ErrNotConfigured = errors.New("mail: MAIL_USERNAME not configured")

// SMTP holds connection settings, read from the MAIL_* environment keys.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func settings() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "localhost"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@cafe.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Café"),
	}
}

// Envelope is a fully built message handed to a Transport.
type Envelope struct {
	From    string
	To      []string
	Subject string
	HTML    bool
	Body    string
}

// Transport delivers an envelope.
type Transport func(cfg SMTP, e Envelope) error

var (
	transportMu sync.RWMutex
	transport   Transport = sendSMTP
)

// UseTransport replaces the delivery function and returns a func restoring
// the previous one.
func UseTransport(t Transport) (restore func()) {
	transportMu.Lock()
	prev := transport
	transport = t
	transportMu.Unlock()
	return func() {
		transportMu.Lock()
		transport = prev
		transportMu.Unlock()
	}
}

type Message struct {
	to      []string
	subject string
	body    string
	html    bool
}

// To starts a message to the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses, html: true}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.html = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.html = false
	return m
}

// Send delivers the message through the current Transport.
func (m *Message) Send() error {
	if len(m.to) == 0 {
		return errors.New("mail: no recipients")
	}
	cfg := settings()

	transportMu.RLock()
	t := transport
	transportMu.RUnlock()

	return t(cfg, Envelope{
		From:    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From),
		To:      m.to,
		Subject: m.subject,
		HTML:    m.html,
		Body:    m.body,
	})
}

// sendSMTP uses implicit TLS on port 465 and STARTTLS otherwise.
func sendSMTP(cfg SMTP, e Envelope) error {
	if cfg.Username == "" {
		return ErrNotConfigured
	}
	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	raw := e.raw()

	if cfg.Port != "465" {
		return smtp.SendMail(addr, auth, cfg.From, e.To, raw)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	if err := client.Mail(cfg.From); err != nil {
		return err
	}
	for _, rcpt := range e.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (e Envelope) raw() []byte {
	ct := "text/plain"
	if e.HTML {
		ct = "text/html"
	}
	var b strings.Builder
	b.WriteString("From: " + e.From + "\r\n")
	b.WriteString("To: " + strings.Join(e.To, ", ") + "\r\n")
	b.WriteString("Subject: " + e.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + ct + "; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(e.Body)
	return []byte(b.String())
}
