package usecase

import "context"

// NotificationQueue abstracts the notifier service so use cases stay
// transport-agnostic. Queueing must never fail a business operation; the
// implementation buffers undeliverable messages for later retry.
type NotificationQueue interface {
	Queue(ctx context.Context, to, template string, params []string) error
}
