package domain

import "time"

// SubscriptionStatus classifies a community's paid-plan state.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
	SubscriptionUnknown SubscriptionStatus = "unknown"
)

// Subscription is a community's paid-plan snapshot. The gate only ever reads
// it; ownership stays with the payment flow that writes it.
type Subscription struct {
	PlanID    string             `json:"plan_id,omitempty"`
	Status    SubscriptionStatus `json:"status"`
	StartedAt *time.Time         `json:"started_at,omitempty"`
	EndsAt    *time.Time         `json:"ends_at,omitempty"`
}

// IsCurrent reports whether the subscription is active at the reference time.
// A missing end date counts as current: an active plan without an expiry must
// not lock anyone out.
func (s *Subscription) IsCurrent(reference time.Time) bool {
	if s == nil || s.Status != SubscriptionActive {
		return false
	}
	if s.EndsAt == nil {
		return true
	}
	return !s.EndsAt.Before(reference)
}
