// Package notify dispatches tenant notifications. The reminder processor
// depends on the Sender interface; production wiring uses the SMTP Mailer.
package notify

import "context"

// Sender delivers a single message to a destination address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
