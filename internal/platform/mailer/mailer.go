// Package mailer delivers signup OTP emails.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	mail "gopkg.in/mail.v2"

	"stock_watchlist/internal/platform/config"
)

var otpBody = template.Must(template.New("otp").Parse(`Hello {{.Name}},

Your verification code is {{.Code}}.
It expires in {{.Minutes}} minutes.
`))

type otpData struct {
	Name    string
	Code    string
	Minutes int
}

func renderOTP(name, code string, ttl time.Duration) (string, error) {
	if name == "" {
		name = "there"
	}
	var buf bytes.Buffer
	if err := otpBody.Execute(&buf, otpData{Name: name, Code: code, Minutes: int(ttl.Minutes())}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Sender is the part of mail.Dialer the SMTP mailer uses.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPMailer sends OTP emails through an SMTP relay.
type SMTPMailer struct {
	sender Sender
	from   string
	ttl    time.Duration
}

func NewSMTPMailer(cfg config.SMTP, otpTTL time.Duration) *SMTPMailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{sender: d, from: cfg.From, ttl: otpTTL}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code string) error {
	body, err := renderOTP(name, code, m.ttl)
	if err != nil {
		return fmt.Errorf("failed to render otp email: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your verification code")
	msg.SetBody("text/plain", body)

	// DialAndSend has no context; a cancelled request still skips the send.
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	slog.Info("otp email sent", "to", to)
	return nil
}

// LogMailer writes the OTP to the log instead of sending it. Used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendOTP(_ context.Context, to, _ string, code string) error {
	slog.Warn("smtp not configured, otp logged instead of emailed", "to", to, "otp", code)
	return nil
}

// OTPMailer is implemented by SMTPMailer and LogMailer.
type OTPMailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

// New picks the SMTP mailer when a relay is configured.
func New(cfg config.SMTP, otpTTL time.Duration) OTPMailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg, otpTTL)
	}
	return LogMailer{}
}
