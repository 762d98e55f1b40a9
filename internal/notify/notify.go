package notify

import (
	"context"
	"log"
)

// Sender delivers the one-time "your area is now live" announcement to a
// batch of recipients. Delivery is an external collaborator; failures are
// logged by callers and never retried here.
type Sender interface {
	SendAreaLive(ctx context.Context, postalCode string, recipients []string) error
}

// LogSender is the default Sender: it records the batch instead of
// delivering it. Deployments plug a real delivery service in behind the
// interface.
type LogSender struct{}

func (LogSender) SendAreaLive(ctx context.Context, postalCode string, recipients []string) error {
	log.Printf("[notify] area %s is live, announcing to %d verified neighbor(s)", postalCode, len(recipients))
	return nil
}
