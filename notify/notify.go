// Package notify delivers owner-facing email when a task changes status.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Notifier sends a message to a single recipient.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

// NewSMTPNotifier configures a notifier for the given relay. Username may be
// empty for relays without authentication.
func NewSMTPNotifier(addr, from, username, password string) *SMTPNotifier {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPNotifier{addr: addr, from: from, auth: auth}
}

func (n *SMTPNotifier) Notify(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", n.from, to, subject, body)
	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
