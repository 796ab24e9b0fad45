// Package mail renders and delivers outbound email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Inline is an attachment referenced from the HTML body as cid:<Name>.
type Inline struct {
	Name string
	Data []byte
}

// Message is a rendered email with a plain-text body and an optional HTML
// alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Inline  []Inline
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// TLS policies accepted in Config.TLS.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      string
}

// SMTPSender delivers messages over SMTP.
type SMTPSender struct {
	cfg Config
}

// NewSMTPSender returns a Sender for cfg.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send builds a MIME message and delivers it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy(s.cfg.TLS)),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	for _, in := range msg.Inline {
		if err := m.EmbedReader(in.Name, bytes.NewReader(in.Data)); err != nil {
			return nil, fmt.Errorf("embedding %s: %w", in.Name, err)
		}
	}
	return m, nil
}

func tlsPolicy(name string) gomail.TLSPolicy {
	switch name {
	case TLSNone:
		return gomail.NoTLS
	case TLSOpportunistic:
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no SMTP host is configured.
type LogSender struct{}

// Send logs the recipient, subject and plain-text body.
func (LogSender) Send(_ context.Context, msg Message) error {
	slog.Info("email not sent, no smtp host configured",
		"to", msg.To, "subject", msg.Subject, "body", msg.Text)
	return nil
}
