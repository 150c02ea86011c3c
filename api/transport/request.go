package transport

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// ProfileSubscription is the possibly-stale subscription snapshot a client
// carries in its profile. EndsAt is RFC3339; an unparseable value is treated
// as no expiry constraint.
type ProfileSubscription struct {
	Status string `json:"status"`
	EndsAt string `json:"ends_at,omitempty"`
}

type GateEvaluateRequest struct {
	Route        string               `json:"route"`
	CommunityID  string               `json:"community_id"`
	FromPayment  bool                 `json:"from_payment"`
	Subscription *ProfileSubscription `json:"subscription,omitempty"`
}

type CreateOrderRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	PlanID      string            `json:"plan_id"`
	CommunityID string            `json:"community_id"`
	Notes       map[string]string `json:"notes,omitempty"`
}

// VerifyPaymentRequest mirrors the gateway checkout response field names plus
// the business context needed to activate the subscription.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	CommunityID       string `json:"community_id"`
	PlanID            string `json:"plan_id"`
	Duration          int    `json:"duration"`
}

type CommunityUpsertRequest struct {
	Name       string            `json:"name"`
	AdminEmail string            `json:"admin_email"`
	Phone      string            `json:"phone"`
	Address    string            `json:"address"`
	IsActive   bool              `json:"is_active"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
