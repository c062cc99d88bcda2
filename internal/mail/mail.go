// Package mail provides best-effort outbound email delivery. Sending is a
// side channel: callers fire and forget, and failures must never abort the
// operation that triggered the message.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is a structured outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message and returns a provider message ID when available.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPConfig holds connection settings for the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages over plain SMTP with AUTH.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates an SMTPSender with the given settings.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers the message. The multipart body carries both the plain-text
// and HTML alternatives.
func (s *SMTPSender) Send(_ context.Context, msg Message) (string, error) {
	from := msg.From
	if from == "" {
		from = s.cfg.From
	}

	id := uuid.New().String()
	body := buildMIME(from, msg, id)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, from, msg.To, body); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

func buildMIME(from string, msg Message, id string) []byte {
	const boundary = "oasis-mail-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "Message-ID: <%s>\r\n", id)
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	if msg.Text != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.Text)
	}
	if msg.HTML != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// LogSender logs messages instead of delivering them. Used when SMTP is not
// configured (local development, tests).
type LogSender struct {
	lg *zap.Logger
}

// NewLogSender creates a LogSender writing to the given logger.
func NewLogSender(lg *zap.Logger) *LogSender {
	return &LogSender{lg: lg}
}

// Send logs the message and returns a synthetic message ID.
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.New().String()
	s.lg.Info("mail delivery skipped (no SMTP configured)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", id),
	)
	return id, nil
}
