package domain

import "time"

const (
	RoleSuperAdmin     = "super_admin"
	RoleCommunityAdmin = "community_admin"
	RoleTenant         = "tenant"
)

// User represents an authenticated identity in the platform. Community admins
// carry the id of the community they manage plus a possibly-stale copy of its
// subscription, refreshed whenever the community row is re-read.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email,omitempty"`
	Role         string            `json:"role"`
	Status       string            `json:"status"`
	CommunityID  string            `json:"community_id,omitempty"`
	Subscription *Subscription     `json:"subscription,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == "active"
}

// IsGated reports whether subscription gating applies to this user at all.
// Only community admins are gated; super admins and tenants pass through.
func (u *User) IsGated() bool {
	return u != nil && u.Role == RoleCommunityAdmin
}
