// internal/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/rishikeshydv/bulk-email-sender/internal/config"
)

const (
	dialTimeout   = 20 * time.Second
	clientTimeout = 30 * time.Second
)

// Attachment is a file already read into memory by the request boundary.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	To          string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer dispatches a single message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// SMTPMailer sends through one fixed SMTP endpoint. A fresh connection is
// dialed per call; there is no pooling.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("mailer: host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("mailer: invalid port %d", cfg.Port)
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("mailer: from address is required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

var crlfStripper = strings.NewReplacer("\r", "", "\n", "")

// Send dials the configured endpoint and delivers msg. Any failure (dial,
// auth, rejection) comes back as an opaque transport error.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	mm := mail.NewMsg()

	var err error
	if m.cfg.FromName != "" {
		err = mm.FromFormat(m.cfg.FromName, m.cfg.From)
	} else {
		err = mm.From(m.cfg.From)
	}
	if err != nil {
		return "", fmt.Errorf("mailer: set from: %w", err)
	}

	if m.cfg.ReplyTo != "" {
		if err := mm.ReplyTo(m.cfg.ReplyTo); err != nil {
			return "", fmt.Errorf("mailer: set reply-to: %w", err)
		}
	}

	if msg.ToName != "" {
		err = mm.AddToFormat(msg.ToName, msg.To)
	} else {
		err = mm.To(msg.To)
	}
	if err != nil {
		return "", fmt.Errorf("mailer: set to: %w", err)
	}

	// Header injection guard.
	mm.Subject(crlfStripper.Replace(msg.Subject))

	mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	for _, a := range msg.Attachments {
		opts := []mail.FileOption{}
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := mm.AttachReader(a.Filename, bytes.NewReader(a.Data), opts...); err != nil {
			return "", fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}

	mm.SetMessageID()

	client, err := m.newClient()
	if err != nil {
		return "", fmt.Errorf("mailer: client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return "", fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}

	return mm.GetMessageID(), nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(clientTimeout),
		mail.WithDialContextFunc(dialIPv4),
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	// 465 is implicit TLS, everything else negotiates STARTTLS.
	if m.cfg.Port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	return mail.NewClient(m.cfg.Host, opts...)
}

// dialIPv4 resolves the host's A records and connects over tcp4. Some
// deployment environments advertise AAAA records for the provider without
// having a working IPv6 path, so default resolution order cannot be trusted.
func dialIPv4(ctx context.Context, _, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("split address %q: %w", address, err)
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s over ipv4: %w", host, err)
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	var lastErr error
	for _, ip := range ips {
		conn, err := dialer.DialContext(ctx, "tcp4", net.JoinHostPort(ip.String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no ipv4 addresses for %s", host)
	}
	return nil, lastErr
}
