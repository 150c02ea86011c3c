package repository

import (
	"context"

	"github.com/rajasekharstrikes1/society-pay/domain"
)

type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
}
