// Package email mails team alerts over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/Strob0t/ClientForge/internal/port/notifier"
)

const providerName = "email"

// SMTPConfig holds the configuration for SMTP connections.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
	To       []string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Notifier sends alerts as plain-text mail.
type Notifier struct {
	cfg  SMTPConfig
	send sendFunc
}

var _ notifier.Notifier = (*Notifier)(nil)

// NewNotifier creates an email notifier.
func NewNotifier(cfg SMTPConfig) *Notifier {
	return &Notifier{cfg: cfg, send: smtp.SendMail}
}

func (n *Notifier) Name() string { return providerName }

// Send mails note to every configured recipient. smtp.SendMail takes no
// context, so cancellation is only checked before dialing.
func (n *Notifier) Send(ctx context.Context, note notifier.Notification) error {
	if n.cfg.Host == "" || n.cfg.From == "" || len(n.cfg.To) == 0 {
		return notifier.ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.From, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, n.compose(note)); err != nil {
		return fmt.Errorf("email send: %w", err)
	}
	return nil
}

func (n *Notifier) compose(note notifier.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: [ClientForge] %s\r\n", headerSafe(note.Title))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")

	if note.Message != "" {
		b.WriteString(note.Message)
		b.WriteString("\r\n\r\n")
	}
	for _, f := range note.Fields {
		fmt.Fprintf(&b, "%s: %s\r\n", f.Label, f.Value)
	}
	if note.URL != "" {
		fmt.Fprintf(&b, "\r\n%s\r\n", note.URL)
	}
	return []byte(b.String())
}

// headerSafe strips line breaks so user-supplied text cannot add headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
