package impl

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"userauth/internal/observability/middleware"
	"userauth/internal/service"

	"gopkg.in/gomail.v2"
)

var (
	_ service.EmailService = (*SMTPEmailService)(nil)
	_ service.EmailService = (*LogEmailService)(nil)
)

const resetSubject = "Password Reset OTP"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Password Reset OTP</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px;">
    <div style="background: #000000; color: #ffffff; padding: 30px; text-align: center;">
      <h1>Password Reset Request</h1>
    </div>
    <div style="padding: 40px 30px; text-align: center;">
      <h2>Hello {{.Name}},</h2>
      <p>We received a request to reset your password. Use the OTP code below to complete your password reset:</p>
      <div style="margin: 30px 0;">
        <div>Your OTP Code</div>
        <div style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</div>
      </div>
      <p><strong>Important:</strong> This OTP will expire in {{.Minutes}} minutes. Do not share this code with anyone.</p>
      <p>If you didn't request a password reset, please ignore this email or contact support if you have concerns.</p>
    </div>
    <div style="padding: 20px; text-align: center; color: #999999;">
      <p>This is an automated message, please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>`))

// RenderResetEmail renders the HTML body of the password reset email.
func RenderResetEmail(name, code string, ttl time.Duration) (string, error) {
	if name == "" {
		name = "User"
	}
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name    string
		Code    string
		Minutes int
	}{Name: name, Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return "", fmt.Errorf("render reset email: %w", err)
	}
	return buf.String(), nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// dialer is the part of *gomail.Dialer the service uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
	Dial() (gomail.SendCloser, error)
}

type SMTPEmailService struct {
	from   string
	otpTTL time.Duration
	dialer dialer
}

func NewSMTPEmailService(cfg SMTPConfig, otpTTL time.Duration) *SMTPEmailService {
	return &SMTPEmailService{
		from:   cfg.From,
		otpTTL: otpTTL,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPEmailService) SendPasswordResetOTP(ctx context.Context, to, name, code string) error {
	body, err := RenderResetEmail(name, code, s.otpTTL)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", resetSubject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		slog.Error("send reset email", append(middleware.LogAttrs(ctx), "to", to, "error", err)...)
		return fmt.Errorf("send reset email: %w", err)
	}
	slog.Info("reset email sent", append(middleware.LogAttrs(ctx), "to", to)...)
	return nil
}

func (s *SMTPEmailService) Ping(ctx context.Context) error {
	sc, err := s.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	return sc.Close()
}

// LogEmailService prints reset codes to the log instead of sending them. It
// is only wired when no SMTP host is configured.
type LogEmailService struct {
	Logger *slog.Logger
}

func (l LogEmailService) SendPasswordResetOTP(ctx context.Context, to, name, code string) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "DEVELOPER MODE: password reset code", "to", to, "name", name, "otp", code)
	return nil
}

func (LogEmailService) Ping(context.Context) error { return nil }
