package repository

import (
	"context"
	"time"

	"github.com/rajasekharstrikes1/society-pay/domain"
)

// FlagRepository is the session flag store backing the access gate. It splits
// state across two scopes: the payment marker lives in a durable scope that
// survives the session, everything else is session-scoped and expires with it.
// Implementations must make every write idempotent; recording a redirect twice
// overwrites the timestamp rather than extending the cooldown.
type FlagRepository interface {
	// Snapshot returns the full flag state for a subject in one read. A
	// subject with no recorded flags yields the zero value, not an error.
	Snapshot(ctx context.Context, subjectID string) (domain.GateFlags, error)

	// MarkPaymentSuccess stores the payment marker (durable scope) and flips
	// the valid-subscription indicator (session scope).
	MarkPaymentSuccess(ctx context.Context, subjectID, paymentID string) error

	// SetBypass force-enables the session-scoped bypass flag.
	SetBypass(ctx context.Context, subjectID string) error

	// RecordRedirect stamps the last gate-triggered redirect.
	RecordRedirect(ctx context.Context, subjectID string) error

	// CacheSubscription primes the session-scoped subscription snapshot so
	// later evaluations can skip the network round trip.
	CacheSubscription(ctx context.Context, subjectID string, status domain.SubscriptionStatus, endsAt *time.Time) error
}
