package domain

import "time"

// Community represents a tenant organization (a housing society).
type Community struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	AdminEmail   string            `json:"admin_email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	IsActive     bool              `json:"is_active"`
	Subscription *Subscription     `json:"subscription,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (c *Community) HasCurrentSubscription(reference time.Time) bool {
	return c != nil && c.Subscription.IsCurrent(reference)
}
