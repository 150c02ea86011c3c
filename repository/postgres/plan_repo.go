package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajasekharstrikes1/society-pay/domain"
	"github.com/rajasekharstrikes1/society-pay/repository"
)

type planRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository instantiates a Postgres-backed plan repository.
func NewPlanRepository(pool *pgxpool.Pool) repository.PlanRepository {
	return &planRepository{pool: pool}
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	const query = `
		SELECT id, name, amount, currency, duration_months, metadata, created_at, updated_at
		FROM plans
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]domain.Plan, error) {
	const query = `
		SELECT id, name, amount, currency, duration_months, metadata, created_at, updated_at
		FROM plans
		ORDER BY amount ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var plan domain.Plan
	var metadata []byte

	if err := row.Scan(
		&plan.ID,
		&plan.Name,
		&plan.Amount,
		&plan.Currency,
		&plan.DurationMonths,
		&metadata,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &plan.Metadata)
	}
	return &plan, nil
}
