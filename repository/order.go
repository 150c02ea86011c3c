package repository

import (
	"context"

	"github.com/rajasekharstrikes1/society-pay/domain"
)

type OrderFilter struct {
	UserID      string
	CommunityID string
	Status      string
	Limit       int
	Offset      int
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	// MarkPaid records the gateway payment id and flips the order to paid.
	MarkPaid(ctx context.Context, id, paymentID string) error
}
