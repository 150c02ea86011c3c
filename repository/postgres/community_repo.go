package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

type communityRepository struct {
	pool *pgxpool.Pool
}

// NewCommunityRepository instantiates a Postgres-backed community repository.
func NewCommunityRepository(pool *pgxpool.Pool) repository.CommunityRepository {
	return &communityRepository{pool: pool}
}

func (r *communityRepository) GetByID(ctx context.Context, id string) (*domain.Community, error) {
	const query = `
		SELECT id, name, COALESCE(admin_email, ''), COALESCE(phone, ''), COALESCE(address, ''),
			is_active, plan_id, subscription_status, subscription_started_at, subscription_ends_at,
			metadata, created_at, updated_at
		FROM communities
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var community domain.Community
	var metadata []byte
	var planID, status *string
	var startedAt, endsAt *time.Time

	if err := row.Scan(
		&community.ID,
		&community.Name,
		&community.AdminEmail,
		&community.Phone,
		&community.Address,
		&community.IsActive,
		&planID,
		&status,
		&startedAt,
		&endsAt,
		&metadata,
		&community.CreatedAt,
		&community.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommunityNotFound
		}
		return nil, err
	}

	if status != nil {
		sub := &domain.Subscription{
			Status:    domain.SubscriptionStatus(*status),
			StartedAt: startedAt,
			EndsAt:    endsAt,
		}
		if planID != nil {
			sub.PlanID = *planID
		}
		community.Subscription = sub
	}

	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &community.Metadata)
	}

	return &community, nil
}

func (r *communityRepository) Upsert(ctx context.Context, community *domain.Community) error {
	if community == nil || community.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO communities (id, name, admin_email, phone, address, is_active, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		admin_email = EXCLUDED.admin_email,
		phone = EXCLUDED.phone,
		address = EXCLUDED.address,
		is_active = EXCLUDED.is_active,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		community.ID,
		community.Name,
		nullString(community.AdminEmail),
		nullString(community.Phone),
		nullString(community.Address),
		community.IsActive,
		marshalMap(community.Metadata),
		nullTime(community.CreatedAt),
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	community.CreatedAt = createdAt
	community.UpdatedAt = updatedAt
	return nil
}

func (r *communityRepository) UpdateSubscription(ctx context.Context, communityID string, sub *domain.Subscription) error {
	if communityID == "" || sub == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE communities
	SET plan_id = $2,
		subscription_status = $3,
		subscription_started_at = $4,
		subscription_ends_at = $5,
		is_active = $6,
		updated_at = NOW()
	WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		communityID,
		nullString(sub.PlanID),
		string(sub.Status),
		sub.StartedAt,
		sub.EndsAt,
		sub.Status == domain.SubscriptionActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommunityNotFound
	}
	return nil
}
