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

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates a Postgres-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const query = `
		SELECT id, user_id, COALESCE(community_id, ''), amount, currency, receipt, status,
			COALESCE(payment_id, ''), notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	const query = `
		SELECT id, user_id, COALESCE(community_id, ''), amount, currency, receipt, status,
			COALESCE(payment_id, ''), notes, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR community_id = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.CommunityID, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO orders (id, user_id, community_id, amount, currency, receipt, status, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING created_at, updated_at;
	`

	var createdAt, updatedAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		nullString(order.CommunityID),
		order.Amount,
		order.Currency,
		order.Receipt,
		order.Status,
		marshalMap(order.Notes),
	).Scan(&createdAt, &updatedAt); err != nil {
		return err
	}

	order.CreatedAt = createdAt
	order.UpdatedAt = updatedAt
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id, paymentID string) error {
	if id == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE orders
	SET status = $2, payment_id = $3, updated_at = NOW()
	WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, domain.OrderPaid, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var notes []byte

	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.CommunityID,
		&order.Amount,
		&order.Currency,
		&order.Receipt,
		&order.Status,
		&order.PaymentID,
		&notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(notes) > 0 {
		_ = json.Unmarshal(notes, &order.Notes)
	}
	return &order, nil
}
