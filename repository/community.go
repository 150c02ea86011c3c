package repository

import (
	"context"

	"github.com/rajasekharstrikes1/society-pay/domain"
)

type CommunityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Community, error)
	Upsert(ctx context.Context, community *domain.Community) error
	// UpdateSubscription replaces the community's subscription snapshot.
	UpdateSubscription(ctx context.Context, communityID string, sub *domain.Subscription) error
}
