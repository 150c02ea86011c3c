package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rajasekharstrikes1/society-pay/internal/infrastructure/outbox"
)

// TemplateSender abstracts the WhatsApp gateway client.
type TemplateSender interface {
	SendTemplateMessage(ctx context.Context, to, templateName string, params []string) error
}

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// NotifierConfig controls how frequently the outbox is drained.
type NotifierConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// Notifier delivers WhatsApp notifications. Failed sends land in the bolt
// outbox and are retried by a cron drain loop, so callers can treat delivery
// as fire-and-forget.
type Notifier struct {
	store   *outbox.Store
	monitor ConnectionHealth
	sender  TemplateSender
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     NotifierConfig
}

func NewNotifier(
	store *outbox.Store,
	monitor ConnectionHealth,
	sender TemplateSender,
	logger *zap.Logger,
	cfg NotifierConfig,
) *Notifier {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	n := &Notifier{
		store:   store,
		monitor: monitor,
		sender:  sender,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = n.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := n.Drain(ctx); err != nil {
			n.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return n
}

// Start launches the cron scheduler.
func (n *Notifier) Start() {
	if n == nil || n.cron == nil {
		return
	}
	n.cron.Start()
	n.logger.Info("notifier started")
}

// Stop gracefully stops the scheduler.
func (n *Notifier) Stop(ctx context.Context) {
	if n == nil || n.cron == nil {
		return
	}
	stopCtx := n.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	n.logger.Info("notifier stopped")
}

// Queue attempts a direct send and buffers the message on failure. It never
// returns a delivery error; only an outbox write failure surfaces.
func (n *Notifier) Queue(ctx context.Context, to, template string, params []string) error {
	if n == nil || n.sender == nil {
		return nil
	}
	if err := n.sender.SendTemplateMessage(ctx, to, template, params); err == nil {
		return nil
	} else {
		n.logger.Warn("notification send failed, buffering",
			zap.String("template", template),
			zap.Error(err))
	}

	if n.store == nil {
		return nil
	}
	return n.store.Enqueue(outbox.Message{
		To:       to,
		Template: template,
		Params:   params,
	})
}

// Drain retries buffered messages synchronously.
func (n *Notifier) Drain(ctx context.Context) error {
	if n == nil || n.store == nil {
		return nil
	}
	if n.monitor != nil && !n.monitor.IsOnline() {
		n.logger.Debug("skipping outbox drain (offline)")
		return nil
	}

	msgs, err := n.store.GetBatch(n.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if err := n.sender.SendTemplateMessage(ctx, msg.To, msg.Template, msg.Params); err != nil {
			n.logger.Warn("outbox message retry failed",
				zap.String("message_id", msg.ID),
				zap.Int("retries", msg.Retries),
				zap.Error(err))

			if msg.Retries+1 >= n.cfg.MaxRetries {
				n.logger.Error("dropping message after max retries", zap.String("message_id", msg.ID))
				if err := n.store.Remove(msg); err != nil {
					return err
				}
				continue
			}
			if err := n.store.Requeue(msg); err != nil {
				return err
			}
			continue
		}
		if err := n.store.Remove(msg); err != nil {
			return err
		}
	}

	return n.store.Cleanup(time.Now().Add(-n.cfg.Retention))
}
