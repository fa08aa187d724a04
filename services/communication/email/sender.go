package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"kursor/shared/logger"

	"github.com/google/uuid"
)

// Sender delivers a single email and returns its Message-ID
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// Message is one outbound email
type Message struct {
	FromName string
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	// ImplicitTLS dials TLS directly (port 465) instead of using STARTTLS
	ImplicitTLS bool
	// DisableTLS skips STARTTLS; only meant for local relays
	DisableTLS bool
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultSMTPConfig returns SMTP settings for the Resend relay
func DefaultSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:       "smtp.resend.com",
		Port:       587,
		Username:   "resend",
		FromEmail:  "onboarding@resend.dev",
		Timeout:    30 * time.Second,
		MaxRetries: 2,
		RetryDelay: 2 * time.Second,
	}
}

// smtpSender implements Sender over net/smtp
type smtpSender struct {
	config *SMTPConfig
	auth   smtp.Auth
}

// NewSMTPSender creates a new SMTP email sender
func NewSMTPSender(config *SMTPConfig) (Sender, error) {
	if config == nil {
		return nil, fmt.Errorf("SMTP config is required")
	}
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP config: %w", err)
	}

	var auth smtp.Auth
	if config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	return &smtpSender{config: config, auth: auth}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", config.Port)
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	if !IsValidEmail(config.FromEmail) {
		return fmt.Errorf("invalid from email format: %s", config.FromEmail)
	}
	if config.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return nil
}

// Send builds the MIME message and delivers it, retrying transient failures
func (s *smtpSender) Send(ctx context.Context, msg *Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	for _, to := range msg.To {
		if !IsValidEmail(to) {
			return "", fmt.Errorf("invalid email address: %s", to)
		}
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(s.config.FromEmail))
	raw, err := s.buildMessage(msg, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to build email message: %w", err)
	}

	if err := s.sendWithRetry(ctx, msg.To, raw); err != nil {
		return "", err
	}
	return messageID, nil
}

func (s *smtpSender) sendWithRetry(ctx context.Context, recipients []string, raw []byte) error {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * s.config.RetryDelay
			logger.WithFields(map[string]interface{}{
				"attempt":    attempt,
				"delay":      delay,
				"recipients": len(recipients),
			}).Info("Retrying email send")

			select {
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		err := s.sendSMTP(ctx, recipients, raw)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err) {
			logger.WithFields(map[string]interface{}{
				"error":      err.Error(),
				"recipients": len(recipients),
			}).Error("Non-retryable email error")
			break
		}

		logger.WithFields(map[string]interface{}{
			"attempt":    attempt,
			"error":      err.Error(),
			"recipients": len(recipients),
		}).Warn("Email send attempt failed")
	}

	return fmt.Errorf("failed to send email: %w", lastErr)
}

func (s *smtpSender) sendSMTP(ctx context.Context, recipients []string, raw []byte) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	dialer := &net.Dialer{Timeout: s.config.Timeout}

	var conn net.Conn
	var err error
	if s.config.ImplicitTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.config.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(s.config.Timeout))

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if !s.config.ImplicitTLS && !s.config.DisableTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data transmission: %w", err)
	}
	if _, err := writer.Write(raw); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish message data: %w", err)
	}

	return client.Quit()
}

// buildMessage renders the RFC 5322 message with a multipart/alternative
// body when both parts are present.
func (s *smtpSender) buildMessage(m *Message, messageID string) ([]byte, error) {
	if m.HTMLBody == "" && m.TextBody == "" {
		return nil, fmt.Errorf("either HTML or text body must be provided")
	}

	var msg bytes.Buffer
	from := s.config.FromEmail
	if m.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.FromName), s.config.FromEmail)
	}

	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(m.To, ", "))
	if m.ReplyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", m.ReplyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&msg, "Message-ID: %s\r\n", messageID)
	msg.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case m.HTMLBody != "" && m.TextBody != "":
		boundary := "kursor_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)
		writePart(&msg, boundary, "text/plain", m.TextBody)
		writePart(&msg, boundary, "text/html", m.HTMLBody)
		fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	case m.HTMLBody != "":
		msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
		msg.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		msg.WriteString(m.HTMLBody)
		msg.WriteString("\r\n")
	default:
		msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		msg.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		msg.WriteString(m.TextBody)
		msg.WriteString("\r\n")
	}

	return msg.Bytes(), nil
}

func writePart(msg *bytes.Buffer, boundary, contentType, body string) {
	fmt.Fprintf(msg, "--%s\r\n", boundary)
	fmt.Fprintf(msg, "Content-Type: %s; charset=utf-8\r\n", contentType)
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n\r\n")
}

// isRetryableError reports network failures and SMTP 4xx replies
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, retryable := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"temporary failure",
		"too many connections",
	} {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	for _, code := range []string{"421 ", "450 ", "451 ", "452 "} {
		if strings.Contains(errStr, code) {
			return true
		}
	}
	return false
}

func domainOf(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 && i < len(address)-1 {
		return address[i+1:]
	}
	return "kursor.local"
}
