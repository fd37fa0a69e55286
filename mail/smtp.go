package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// Security is one of "starttls" (default), "ssl", or "none".
	Security string
}

// SMTP sends mail through a single SMTP endpoint.
type SMTP struct {
	cfg Config
}

// NewSMTP validates the transport configuration.
func NewSMTP(cfg Config) (*SMTP, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))

	if cfg.Host == "" || cfg.From == "" {
		return nil, errors.New("smtp host and from address are required")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	switch cfg.Security {
	case "":
		cfg.Security = "starttls"
	case "starttls", "ssl", "none":
	default:
		return nil, fmt.Errorf("unknown smtp security mode %q", cfg.Security)
	}

	return &SMTP{cfg: cfg}, nil
}

// Send delivers a message with a plain-text body and an optional HTML
// alternative. The context bounds connection establishment.
func (m *SMTP) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.message(to, subject, text, html)

	switch m.cfg.Security {
	case "ssl":
		return m.sendImplicitTLS(ctx, to, msg)
	default:
		// smtp.SendMail negotiates STARTTLS when the server offers it,
		// which also covers the "none" mode against plain servers.
		return smtp.SendMail(m.addr(), m.auth(), m.cfg.From, []string{to}, msg)
	}
}

func (m *SMTP) addr() string {
	return net.JoinHostPort(m.cfg.Host, m.cfg.Port)
}

func (m *SMTP) auth() smtp.Auth {
	if m.cfg.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
}

func (m *SMTP) sendImplicitTLS(ctx context.Context, to string, msg []byte) error {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", m.addr())
	if err != nil {
		return err
	}

	tlsConn := tls.Client(conn, &tls.Config{ServerName: m.cfg.Host})
	client, err := smtp.NewClient(tlsConn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	if auth := m.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (m *SMTP) message(to, subject, text, html string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if html == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(text)
		b.WriteString("\r\n")
		return []byte(b.String())
	}

	const boundary = "tshop-mail-boundary"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, html)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}
