package domain

import "time"

const (
	OrderCreated = "created"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
)

// Order mirrors a payment-gateway order created for a subscription purchase.
type Order struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	CommunityID string            `json:"community_id,omitempty"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Receipt     string            `json:"receipt"`
	Status      string            `json:"status"`
	PaymentID   string            `json:"payment_id,omitempty"`
	Notes       map[string]string `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (o *Order) IsPaid() bool {
	return o != nil && o.Status == OrderPaid
}
