package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/appdev/finance/finance-backend/internal/config"
	"github.com/rs/zerolog"
)

// Message is a single outbound HTML mail
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers mail
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender creates a new SMTPSender
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg. The context only guards against starting a send after cancellation;
// net/smtp itself is not context aware.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	body := []byte(buildMessage(s.cfg.From, msg))

	if !s.cfg.UseTLS {
		if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, body); err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	}
	return s.sendWithTLS(addr, auth, msg.To, body)
}

func (s *SMTPSender) sendWithTLS(addr string, auth smtp.Auth, to string, body []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("get writer: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	return w.Close()
}

// buildMessage renders headers in a fixed order followed by the HTML body
func buildMessage(from string, msg Message) string {
	var b strings.Builder
	headers := [][2]string{
		{"From", from},
		{"To", msg.To},
		{"Subject", msg.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.String()
}

// LogSender only logs outgoing mail. Used when no SMTP host is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a new LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail").Logger()}
}

// Send logs msg and never fails
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("SMTP not configured, mail not sent")
	return nil
}
