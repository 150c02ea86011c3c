package domain

import "time"

// Plan is a purchasable subscription tier.
type Plan struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	DurationMonths int               `json:"duration_months"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Term converts the plan duration into a concrete validity window. Months are
// billed as 30-day blocks, matching what the gateway side persists.
func (p *Plan) Term() time.Duration {
	if p == nil || p.DurationMonths <= 0 {
		return 0
	}
	return time.Duration(p.DurationMonths) * 30 * 24 * time.Hour
}
