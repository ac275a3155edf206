package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/coffee-meetup/internal/config"
	"github.com/Shivanand-hulikatti/coffee-meetup/internal/logging"
)

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// NewSender builds the sender for cfg: SMTP behind a circuit breaker when
// enabled, otherwise a sender that only logs.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled {
		return LogSender{}
	}
	return NewBreakerSender("smtp", NewSMTPSender(cfg), cfg.BreakerFailures, cfg.BreakerTimeout)
}

// SMTPSender delivers email over SMTP with optional STARTTLS and PLAIN auth.
type SMTPSender struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg, timeout: timeout}
}

// Send delivers one email.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if s.cfg.User != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(email.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write([]byte(s.buildMessage(email))); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) buildMessage(email Email) string {
	var msg strings.Builder
	fromName := s.cfg.FromName
	if fromName == "" {
		fromName = "Coffee Meetup"
	}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return msg.String()
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct{}

// Send logs the email at info level.
func (LogSender) Send(ctx context.Context, email Email) error {
	logging.Ctx(ctx).Info().
		Str("to", email.To).
		Str("subject", email.Subject).
		Msg("email delivery disabled, message logged")
	return nil
}
