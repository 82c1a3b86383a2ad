// Package mailer provides contact message delivery adapters.
// Clean Architecture: Adapter implementing ports.Mailer.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

// Config holds SMTP settings. To defaults to Username.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	To       string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer implements ports.Mailer over authenticated SMTP.
type SMTPMailer struct {
	from   string
	to     string
	client sender
}

// NewSMTPMailer creates a mailer. Credentials are required.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("smtp username and password are required")
	}
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.To == "" {
		cfg.To = cfg.Username
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPMailer{
		from:   cfg.Username,
		to:     cfg.To,
		client: client,
	}, nil
}

// Send implements ports.Mailer. There is no retry.
func (m *SMTPMailer) Send(ctx context.Context, msg entities.ContactMessage) error {
	mm, err := m.build(msg)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, mm)
}

// build renders the notification. The submitter goes in Reply-To since the
// SMTP account must be the sender.
func (m *SMTPMailer) build(msg entities.ContactMessage) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := mm.To(m.to); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if err := mm.ReplyTo(msg.Email); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}

	mm.Subject("Portfolio Contact: " + msg.Name)
	mm.SetBodyString(mail.TypeTextPlain, textBody(msg))
	mm.AddAlternativeString(mail.TypeTextHTML, htmlBody(msg))
	return mm, nil
}

func textBody(msg entities.ContactMessage) string {
	return fmt.Sprintf("From: %s\nEmail: %s\n\nMessage:\n%s", msg.Name, msg.Email, msg.Message)
}

func htmlBody(msg entities.ContactMessage) string {
	var sb strings.Builder
	sb.WriteString("<h3>New Contact Form Submission</h3>")
	fmt.Fprintf(&sb, "<p><strong>From:</strong> %s</p>", html.EscapeString(msg.Name))
	fmt.Fprintf(&sb, "<p><strong>Email:</strong> %s</p>", html.EscapeString(msg.Email))
	sb.WriteString("<p><strong>Message:</strong></p>")
	fmt.Fprintf(&sb, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(msg.Message), "\n", "<br>"))
	return sb.String()
}
