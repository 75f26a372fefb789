package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"net"
	"net/smtp"
	"strings"
	"time"

	"educhain/internal/config"
	"educhain/internal/domain"
	"educhain/internal/logging"
)

// smtpTimeout bounds a whole SMTP exchange when ctx has no earlier deadline.
const smtpTimeout = 10 * time.Second

// headerSafe strips line breaks that would let submitted text add headers.
var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")

// EmailService handles sending emails
type EmailService struct {
	cfg      *config.EmailConfig
	sendMail func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, sendMail: sendMail}
}

// SendHTMLEmail sends an HTML email with plain text fallback. The SMTP
// exchange is abandoned when ctx is done.
func (s *EmailService) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if !s.cfg.Enabled {
		logging.For("email").Infof("Would send to %s: %s", to, subject)
		return nil
	}

	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	boundary := "----=_NextPart_EDUCHAIN"

	headers := fmt.Sprintf("From: %s\r\n", from) +
		fmt.Sprintf("To: %s\r\n", to) +
		fmt.Sprintf("Subject: %s\r\n", headerSafe.Replace(subject)) +
		"MIME-Version: 1.0\r\n" +
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary) +
		"\r\n"

	message := headers +
		fmt.Sprintf("--%s\r\n", boundary) +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		textBody + "\r\n"

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary) +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := s.sendMail(ctx, addr, auth, s.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// sendMail is smtp.SendMail with the connection bound to ctx: the dial
// honours cancellation, every read and write shares one deadline, and the
// connection is closed as soon as ctx is done.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		_ = conn.Close()
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// IsEnabled returns whether email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.cfg.Enabled
}

// EmailNotifier emails the partnerships team about each new inquiry.
type EmailNotifier struct {
	email *EmailService
	to    string
}

func NewEmailNotifier(email *EmailService, to string) *EmailNotifier {
	return &EmailNotifier{email: email, to: to}
}

func (n *EmailNotifier) NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	subject, htmlBody, textBody := inquiryEmail(inquiry)
	if err := n.email.SendHTMLEmail(ctx, n.to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("email notification: %w", err)
	}
	return nil
}

func inquiryEmail(inquiry *domain.Inquiry) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("New %s inquiry from %s", inquiry.Type, inquiry.Name)

	message := inquiry.Message
	if message == "" {
		message = "(no message)"
	}
	submitted := inquiry.Timestamp.Format("January 2, 2006 at 3:04 PM MST")

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>New Inquiry</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #334155;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #1C5D99;">New Partnership Inquiry</h2>
        <div style="background: #F8FAFC; padding: 20px; border-radius: 8px; margin: 20px 0;">
            <p><strong>Name:</strong> %s</p>
            <p><strong>Email:</strong> <a href="mailto:%s">%s</a></p>
            <p><strong>Type:</strong> %s</p>
            <p><strong>Submitted:</strong> %s</p>
        </div>
        <div style="background: #FFFFFF; padding: 20px; border-left: 4px solid #1C5D99; margin: 20px 0;">
            <h3 style="margin-top: 0;">Message:</h3>
            <p style="white-space: pre-wrap;">%s</p>
        </div>
        <p style="color: #64748B; font-size: 14px;">Inquiry ID: #%d</p>
    </div>
</body>
</html>`,
		html.EscapeString(inquiry.Name),
		html.EscapeString(inquiry.Email), html.EscapeString(inquiry.Email),
		html.EscapeString(inquiry.Type),
		submitted,
		html.EscapeString(message),
		inquiry.ID)

	textBody = fmt.Sprintf(`New Partnership Inquiry

Name: %s
Email: %s
Type: %s
Submitted: %s

Message:
%s

Inquiry ID: #%d`, inquiry.Name, inquiry.Email, inquiry.Type, submitted, message, inquiry.ID)

	return subject, htmlBody, textBody
}
