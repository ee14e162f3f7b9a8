// internal/domain/delivery/client.go
package delivery

import (
	"context"

	"hort_notification_bot/internal/domain/recipient"
)

// Client defines an interface for delivering messages to recipients.
// This helps in decoupling the application logic from the concrete
// delivery mechanism (an external signal-cli binary in production).
type Client interface {
	// Send delivers a message to a single recipient. A nil error means the
	// delivery was confirmed by the underlying transport.
	Send(ctx context.Context, rcpt recipient.Recipient, message string) error
	// Receive performs a lightweight receive/sync call against the delivery
	// channel, used as a keep-alive to prevent transport session expiry.
	Receive(ctx context.Context) error
}
