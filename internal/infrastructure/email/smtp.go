// Package email delivers credential notifications to freshly provisioned
// accounts over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

// Config captures the SMTP settings for outbound mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// AppName and LoginURL are interpolated into the message body.
	AppName  string
	LoginURL string
}

// SMTPSender sends credential notices over SMTP with STARTTLS. Each Send is a
// single delivery attempt; there is no retry queue.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(_ context.Context, notice ports.CredentialNotice) error {
	subject := fmt.Sprintf("Welcome to %s - Your %s Account", s.cfg.AppName, roleTitle(notice.Role))
	body := s.renderBody(notice)

	msg := buildMessage(s.cfg.From, notice.Recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{notice.Recipient}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", notice.Recipient, err)
	}
	return nil
}

func (s *SMTPSender) renderBody(notice ports.CredentialNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body>")
	fmt.Fprintf(&b, "<h2>Welcome to %s!</h2>", s.cfg.AppName)
	fmt.Fprintf(&b, "<p>Your %s account has been created by %s.</p>", roleTitle(notice.Role), notice.IssuerName)
	fmt.Fprintf(&b, "<h3>Your Login Credentials:</h3><ul>")
	fmt.Fprintf(&b, "<li><strong>Username:</strong> %s</li>", notice.Username)
	fmt.Fprintf(&b, "<li><strong>Password:</strong> %s</li>", notice.Password)
	fmt.Fprintf(&b, "</ul>")
	fmt.Fprintf(&b, "<p><strong>Important:</strong> Please change your password after your first login.</p>")
	fmt.Fprintf(&b, "<p><a href=%q>Login to Your Account</a></p>", s.cfg.LoginURL)
	if notice.Role == domain.RoleOrganizer {
		fmt.Fprintf(&b, "<p>As an Organizer you work under the supervision of your Client Administrator; contact them if you have any issues.</p>")
	} else {
		fmt.Fprintf(&b, "<p>Contact the Super Administrator if you have any issues.</p>")
	}
	fmt.Fprintf(&b, "<p>Best regards,<br>%s Team</p>", s.cfg.AppName)
	fmt.Fprintf(&b, "</body></html>")
	return b.String()
}

func roleTitle(role domain.Role) string {
	switch role {
	case domain.RoleClientAdmin:
		return "Client Admin"
	case domain.RoleOrganizer:
		return "Organizer"
	case domain.RoleSuperAdmin:
		return "Super Admin"
	}
	return "User"
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogSender is the NotificationSender used when SMTP is not configured: it
// records the delivery in the log (without the password) and reports success.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, notice ports.CredentialNotice) error {
	s.log.Info().
		Str("recipient", notice.Recipient).
		Str("username", notice.Username).
		Str("role", string(notice.Role)).
		Msg("smtp not configured, credential notification logged only")
	return nil
}
