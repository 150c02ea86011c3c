package gate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

// Config carries the gate's tuning windows. Both are product decisions, not
// derived constraints, so they arrive from configuration.
type Config struct {
	RedirectCooldown time.Duration
	PaymentGrace     time.Duration
	ResolverTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.RedirectCooldown <= 0 {
		c.RedirectCooldown = 5 * time.Second
	}
	if c.PaymentGrace <= 0 {
		c.PaymentGrace = 30 * time.Minute
	}
	if c.ResolverTimeout <= 0 {
		c.ResolverTimeout = 10 * time.Second
	}
	return c
}

// EvaluateRequest is one navigation event presented to the gate.
type EvaluateRequest struct {
	// SubjectID identifies the authenticated user. The auth middleware
	// guarantees it is present before the gate runs.
	SubjectID string

	// CommunityID selects which community's subscription to resolve.
	CommunityID string

	// Route is the path being navigated to.
	Route string

	// FromPayment marks a navigation that arrived from the payment flow.
	FromPayment bool

	// Profile is the possibly-stale subscription snapshot embedded in the
	// caller's profile, used when the resolver cannot produce a fresh one.
	Profile *domain.Subscription
}

// Evaluation is the gate's committed render decision for one navigation.
type Evaluation struct {
	Decision     domain.AccessDecision `json:"decision"`
	Subscription *domain.Subscription  `json:"subscription,omitempty"`
}

// UseCase is the access gate: one decision procedure over the flag store and
// the subscription resolver.
type UseCase struct {
	communities repository.CommunityRepository
	flags       repository.FlagRepository
	logger      *zap.Logger
	cfg         Config
	now         func() time.Time
}

func New(communities repository.CommunityRepository, flags repository.FlagRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		communities: communities,
		flags:       flags,
		logger:      logger,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
}

// Routes that belong to the payment flow itself. The gate never blocks its
// own escape hatches.
var paymentFlowRoutes = map[string]bool{
	"/payment-success":      true,
	"/select-subscription":  true,
	"/subscription-expired": true,
}

// Evaluate runs the decision procedure. Rules apply in priority order and the
// first match wins; later rules are safety nets for earlier rules' blind
// spots, so the ordering must not change.
//
// The overall policy fails open: a wrong Allow delays enforcement by one
// evaluation, a wrong redirect traps the user in a loop.
func (uc *UseCase) Evaluate(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	if req.SubjectID == "" {
		return nil, domain.ErrInvalidPayload
	}

	// Rule: payment-flow routes and payment-carried navigations pass.
	if req.FromPayment || paymentFlowRoutes[req.Route] {
		return &Evaluation{Decision: domain.DecisionAllow}, nil
	}

	now := uc.now()

	// Flags are read once; the rest of the decision is a pure function of
	// this snapshot plus the best available subscription.
	flags, err := uc.flags.Snapshot(ctx, req.SubjectID)
	if err != nil {
		// A broken flag store must not take the render path down; proceed
		// with an empty snapshot.
		uc.logger.Warn("flag snapshot failed", zap.String("subject_id", req.SubjectID), zap.Error(err))
		flags = domain.GateFlags{}
	}

	// Rule: cooldown override. A redirect happened moments ago; redirecting
	// again would loop.
	if flags.InRedirectCooldown(now, uc.cfg.RedirectCooldown) {
		return &Evaluation{Decision: domain.DecisionAllowViaCooldown}, nil
	}

	// Rule: a direct check already confirmed validity this session.
	if flags.ValidSubscription {
		return &Evaluation{Decision: domain.DecisionAllow}, nil
	}

	// Rule: bypass conjunction (escape hatch, recent payment, or payment-flow
	// indicator, cross-checked against the cached snapshot).
	if flags.ShouldBypass(now, uc.cfg.PaymentGrace) {
		return &Evaluation{Decision: domain.DecisionAllowViaBypass}, nil
	}

	// Rule: consult the best available subscription snapshot.
	sub := uc.bestSnapshot(ctx, req)
	if sub != nil && sub.Status == domain.SubscriptionActive {
		// Missing end date fails open rather than locking the user out over
		// a data-quality issue.
		if sub.EndsAt == nil || !sub.EndsAt.Before(now) {
			return &Evaluation{Decision: domain.DecisionAllow, Subscription: sub}, nil
		}
	}

	if err := uc.flags.RecordRedirect(ctx, req.SubjectID); err != nil {
		uc.logger.Warn("failed to record redirect", zap.String("subject_id", req.SubjectID), zap.Error(err))
	}
	uc.logger.Info("redirecting to renewal",
		zap.String("subject_id", req.SubjectID),
		zap.String("community_id", req.CommunityID),
		zap.String("route", req.Route))
	return &Evaluation{Decision: domain.DecisionRedirectToRenewal, Subscription: sub}, nil
}

// SetBypass enables the session-scoped force-allow flag.
func (uc *UseCase) SetBypass(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return domain.ErrInvalidPayload
	}
	return uc.flags.SetBypass(ctx, subjectID)
}

// bestSnapshot prefers a fresh resolver read and falls back to the
// profile-embedded snapshot when the resolver comes back empty-handed.
func (uc *UseCase) bestSnapshot(ctx context.Context, req EvaluateRequest) *domain.Subscription {
	if req.CommunityID != "" {
		if sub, err := uc.Resolve(ctx, req.SubjectID, req.CommunityID, true); err == nil && sub != nil && sub.Status != domain.SubscriptionUnknown {
			return sub
		}
	}
	return req.Profile
}

// Resolve fetches the authoritative subscription for a community. A missing
// community id is a caller contract violation. Fetch failures classify as
// unknown and never surface as errors. On confirming an active, unexpired
// subscription the session cache is primed so the next evaluation skips the
// round trip; pass fresh to skip that cache.
func (uc *UseCase) Resolve(ctx context.Context, subjectID, communityID string, fresh bool) (*domain.Subscription, error) {
	if communityID == "" {
		return nil, domain.ErrInvalidPayload
	}

	if !fresh && subjectID != "" {
		if flags, err := uc.flags.Snapshot(ctx, subjectID); err == nil && flags.CachedStatus != "" {
			return &domain.Subscription{Status: flags.CachedStatus, EndsAt: flags.CachedEndsAt}, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.ResolverTimeout)
	defer cancel()

	community, err := uc.communities.GetByID(ctx, communityID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, nil
		}
		uc.logger.Warn("subscription resolve failed",
			zap.String("community_id", communityID),
			zap.Error(err))
		return &domain.Subscription{Status: domain.SubscriptionUnknown}, nil
	}
	if community.Subscription == nil {
		return nil, nil
	}

	sub := community.Subscription
	if sub.IsCurrent(uc.now()) && subjectID != "" {
		if err := uc.flags.CacheSubscription(ctx, subjectID, sub.Status, sub.EndsAt); err != nil {
			uc.logger.Warn("failed to prime subscription cache",
				zap.String("subject_id", subjectID),
				zap.Error(err))
		}
	}
	return sub, nil
}
