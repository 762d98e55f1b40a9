package activation

import (
	"context"
	"log"

	"github.com/KiezTask/KT-Backend/internal/notify"
)

// ThresholdKey is the settings key for the verified-neighbor count that
// flips an area live.
const ThresholdKey = "area_activation_threshold"

// DefaultThreshold applies when the setting is missing or unparsable.
const DefaultThreshold = 10

// Store is the persistence surface the gate needs. CreateRecord must be
// atomic: under concurrent calls exactly one caller gets won=true and the
// rest see a silent no-op, which is what keeps the notification fan-out
// exactly-once.
type Store interface {
	CountVerified(ctx context.Context, postalCode string) (int, error)
	HasRecord(ctx context.Context, postalCode string) (bool, error)
	CreateRecord(ctx context.Context, postalCode string) (won bool, err error)
	VerifiedRecipients(ctx context.Context, postalCode string) ([]string, error)
}

// Gate tracks verified-user counts per postal code against the configured
// threshold and performs the one-time Inactive → Active transition.
type Gate struct {
	store     Store
	notifier  notify.Sender
	threshold func() int
}

func NewGate(store Store, notifier notify.Sender, threshold func() int) *Gate {
	return &Gate{store: store, notifier: notifier, threshold: threshold}
}

// CheckAndActivate re-evaluates an area after an event that may have changed
// its verified-user count (currently: email verification). When the count
// first reaches threshold it creates the activation record and, if this
// caller won the create, dispatches the announcement batch. A store error on
// the create step means "activation not confirmed" — the next verification
// event retries.
func (g *Gate) CheckAndActivate(ctx context.Context, postalCode string) (Status, error) {
	threshold := g.threshold()
	st := Status{PostalCode: postalCode, Threshold: threshold, Needed: threshold}

	count, err := g.store.CountVerified(ctx, postalCode)
	if err != nil {
		return st, err
	}
	st.VerifiedCount = count
	st.Needed = needed(threshold, count)

	// Record presence wins over the live count: an area stays active even if
	// verified users later drop below threshold.
	active, err := g.store.HasRecord(ctx, postalCode)
	if err != nil {
		return st, err
	}
	if active {
		st.IsActive = true
		st.Needed = 0
		return st, nil
	}

	if count < threshold {
		return st, nil
	}

	won, err := g.store.CreateRecord(ctx, postalCode)
	if err != nil {
		return st, err
	}
	st.IsActive = true
	st.Needed = 0

	if won {
		log.Printf("[activation] area %s crossed threshold (%d/%d), activating", postalCode, count, threshold)
		g.announce(ctx, postalCode)
	}
	return st, nil
}

// announce gathers the area's verified recipients and hands them to the
// notifier as one batch. The area is active regardless of the outcome, so
// failures are logged and never propagated or retried.
func (g *Gate) announce(ctx context.Context, postalCode string) {
	recipients, err := g.store.VerifiedRecipients(ctx, postalCode)
	if err != nil {
		log.Printf("[activation] gather recipients for %s: %v", postalCode, err)
		return
	}
	if err := g.notifier.SendAreaLive(ctx, postalCode, recipients); err != nil {
		log.Printf("[activation] announce %s: %v", postalCode, err)
	}
}

// Status answers "how many more verified neighbors are needed" without side
// effects; safe on every page render. Ambiguous reads report the area as not
// yet active, the conservative default.
func (g *Gate) Status(ctx context.Context, postalCode string) Status {
	threshold := g.threshold()
	st := Status{PostalCode: postalCode, Threshold: threshold, Needed: threshold}

	count, err := g.store.CountVerified(ctx, postalCode)
	if err != nil {
		log.Printf("[activation] count verified for %s: %v", postalCode, err)
		return st
	}
	st.VerifiedCount = count
	st.Needed = needed(threshold, count)

	active, err := g.store.HasRecord(ctx, postalCode)
	if err != nil {
		log.Printf("[activation] check record for %s: %v", postalCode, err)
		return st
	}
	if active {
		st.IsActive = true
		st.Needed = 0
	}
	return st
}

func needed(threshold, count int) int {
	if count >= threshold {
		return 0
	}
	return threshold - count
}
