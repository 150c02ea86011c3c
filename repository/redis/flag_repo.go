package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

// paymentMarker is the durable-scope record: it survives the browsing session
// and expires with the payment grace window.
type paymentMarker struct {
	At        time.Time `json:"at"`
	PaymentID string    `json:"payment_id,omitempty"`
}

// sessionFlags is the session-scope record; its TTL tracks the session TTL and
// is refreshed on every write.
type sessionFlags struct {
	ValidSubscription bool                      `json:"valid_subscription,omitempty"`
	Bypass            bool                      `json:"bypass,omitempty"`
	LastRedirectAt    time.Time                 `json:"last_redirect_at,omitempty"`
	CachedStatus      domain.SubscriptionStatus `json:"cached_status,omitempty"`
	CachedEndsAt      *time.Time                `json:"cached_ends_at,omitempty"`
}

type flagRepository struct {
	client     *redislib.Client
	grace      time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// NewFlagRepository creates the Redis-backed gate flag store. The payment
// marker is kept for the grace window, session flags for the session TTL.
func NewFlagRepository(client *redislib.Client, grace, sessionTTL time.Duration) repository.FlagRepository {
	if grace <= 0 {
		grace = 30 * time.Minute
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &flagRepository{
		client:     client,
		grace:      grace,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (r *flagRepository) Snapshot(ctx context.Context, subjectID string) (domain.GateFlags, error) {
	var flags domain.GateFlags
	if subjectID == "" {
		return flags, domain.ErrInvalidPayload
	}

	var marker paymentMarker
	found, err := r.load(ctx, r.paymentKey(subjectID), &marker)
	if err != nil {
		return flags, err
	}
	if found {
		flags.RecentPaymentAt = marker.At
		flags.LastPaymentID = marker.PaymentID
	}

	var session sessionFlags
	found, err = r.load(ctx, r.sessionKey(subjectID), &session)
	if err != nil {
		return flags, err
	}
	if found {
		flags.ValidSubscription = session.ValidSubscription
		flags.Bypass = session.Bypass
		flags.LastRedirectAt = session.LastRedirectAt
		flags.CachedStatus = session.CachedStatus
		flags.CachedEndsAt = session.CachedEndsAt
	}

	return flags, nil
}

func (r *flagRepository) MarkPaymentSuccess(ctx context.Context, subjectID, paymentID string) error {
	if subjectID == "" {
		return domain.ErrInvalidPayload
	}

	marker := paymentMarker{At: r.now(), PaymentID: paymentID}
	payload, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.paymentKey(subjectID), payload, r.grace).Err(); err != nil {
		return err
	}

	return r.mutateSession(ctx, subjectID, func(s *sessionFlags) {
		s.ValidSubscription = true
	})
}

func (r *flagRepository) SetBypass(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return domain.ErrInvalidPayload
	}
	return r.mutateSession(ctx, subjectID, func(s *sessionFlags) {
		s.Bypass = true
	})
}

func (r *flagRepository) RecordRedirect(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return domain.ErrInvalidPayload
	}
	return r.mutateSession(ctx, subjectID, func(s *sessionFlags) {
		s.LastRedirectAt = r.now()
	})
}

func (r *flagRepository) CacheSubscription(ctx context.Context, subjectID string, status domain.SubscriptionStatus, endsAt *time.Time) error {
	if subjectID == "" {
		return domain.ErrInvalidPayload
	}
	return r.mutateSession(ctx, subjectID, func(s *sessionFlags) {
		s.CachedStatus = status
		s.CachedEndsAt = endsAt
		if status == domain.SubscriptionActive {
			s.ValidSubscription = true
		}
	})
}

func (r *flagRepository) mutateSession(ctx context.Context, subjectID string, mutate func(*sessionFlags)) error {
	key := r.sessionKey(subjectID)

	var session sessionFlags
	if _, err := r.load(ctx, key, &session); err != nil {
		return err
	}

	mutate(&session)

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, payload, r.sessionTTL).Err()
}

func (r *flagRepository) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(result), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *flagRepository) paymentKey(subjectID string) string {
	return fmt.Sprintf("gate:payment:%s", subjectID)
}

func (r *flagRepository) sessionKey(subjectID string) string {
	return fmt.Sprintf("gate:session:%s", subjectID)
}
