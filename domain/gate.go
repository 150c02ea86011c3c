package domain

import "time"

// AccessDecision is the outcome of one access-gate evaluation. It is computed
// fresh on every evaluation and never persisted.
type AccessDecision string

const (
	DecisionAllow             AccessDecision = "allow"
	DecisionRedirectToRenewal AccessDecision = "redirect_to_renewal"
	DecisionAllowViaBypass    AccessDecision = "allow_via_bypass"
	DecisionAllowViaCooldown  AccessDecision = "allow_via_cooldown"
)

// Allowed reports whether the decision grants access in any form.
func (d AccessDecision) Allowed() bool {
	return d != DecisionRedirectToRenewal
}

// GateFlags is the single authoritative value object holding all gate state
// for one subject. It is loaded as one snapshot at decision-start so a
// decision can never observe flags that disagree with each other.
type GateFlags struct {
	// RecentPaymentAt is the moment of the last confirmed payment. Zero when
	// no payment has been confirmed.
	RecentPaymentAt time.Time `json:"recent_payment_at,omitempty"`

	// LastPaymentID records the gateway payment id of the last confirmed
	// payment, for support lookups.
	LastPaymentID string `json:"last_payment_id,omitempty"`

	// ValidSubscription is set once a direct resolver check confirmed an
	// active subscription in this session.
	ValidSubscription bool `json:"valid_subscription,omitempty"`

	// Bypass force-allows access regardless of subscription state. Escape
	// hatch, session-scoped.
	Bypass bool `json:"bypass,omitempty"`

	// LastRedirectAt is the moment of the most recent gate-triggered
	// redirect. Zero when the gate has never redirected this subject.
	LastRedirectAt time.Time `json:"last_redirect_at,omitempty"`

	// CachedStatus and CachedEndsAt mirror the last subscription snapshot the
	// resolver saw, so bypass checks can cross-check without a network trip.
	CachedStatus SubscriptionStatus `json:"cached_status,omitempty"`
	CachedEndsAt *time.Time         `json:"cached_ends_at,omitempty"`
}

// PaymentRecent reports whether a confirmed payment happened within the grace
// window ending at the reference time.
func (f GateFlags) PaymentRecent(reference time.Time, grace time.Duration) bool {
	if f.RecentPaymentAt.IsZero() {
		return false
	}
	return reference.Sub(f.RecentPaymentAt) < grace
}

// InRedirectCooldown reports whether a gate-triggered redirect happened within
// the cooldown window ending at the reference time.
func (f GateFlags) InRedirectCooldown(reference time.Time, cooldown time.Duration) bool {
	if f.LastRedirectAt.IsZero() {
		return false
	}
	return reference.Sub(f.LastRedirectAt) < cooldown
}

// ShouldBypass reports whether the subject may skip the subscription check.
// The bypass or payment indicators alone are not enough: the cached snapshot
// must also still look active and unexpired.
func (f GateFlags) ShouldBypass(reference time.Time, grace time.Duration) bool {
	indicated := f.Bypass || f.ValidSubscription || f.PaymentRecent(reference, grace)
	if !indicated {
		return false
	}
	if f.CachedStatus != SubscriptionActive {
		return false
	}
	return f.CachedEndsAt != nil && f.CachedEndsAt.After(reference)
}
