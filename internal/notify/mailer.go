package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends HTML email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logrus.Logger
}

// Compile-time check: *Mailer must satisfy Sender.
var _ Sender = (*Mailer)(nil)

// NewMailer creates a Mailer for the given SMTP server.
func NewMailer(host string, port int, username, password, from string, log *logrus.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		log:    log,
	}
}

// Send delivers one message. The context deadline is not plumbed into the
// SMTP dial (gomail has no context support); callers bound the overall run
// instead.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	m.log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Debug("mail sent")

	return nil
}
