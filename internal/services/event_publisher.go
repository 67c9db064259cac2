package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tidyhome/backend/internal/infrastructure/outbox"
	appLogger "github.com/tidyhome/backend/pkg/logger"
)

// ChannelHealth reports whether the broadcast channel is currently reachable.
type ChannelHealth interface {
	RedisOnline() bool
}

// PublisherConfig controls outbox draining.
type PublisherConfig struct {
	DrainInterval time.Duration
	BatchSize     int
	MaxRetries    int
}

// EventPublisher broadcasts task events over Redis Pub/Sub. Failed publishes
// fall back to the BoltDB outbox, which a cron job drains once Redis is
// reachable again. Delivery stays best-effort: items that exhaust their
// retries are dropped.
type EventPublisher struct {
	client *redislib.Client
	store  *outbox.Store
	health ChannelHealth
	logger *zap.Logger
	cron   *cron.Cron
	cfg    PublisherConfig
}

func NewEventPublisher(client *redislib.Client, store *outbox.Store, health ChannelHealth, logger *zap.Logger, cfg PublisherConfig) *EventPublisher {
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ep := &EventPublisher{
		client: client,
		store:  store,
		health: health,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.DrainInterval.Seconds()))
	_, _ = ep.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.DrainInterval)
		defer cancel()
		if err := ep.Drain(ctx); err != nil {
			ep.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return ep
}

// Start launches the drain scheduler.
func (ep *EventPublisher) Start() {
	if ep == nil || ep.cron == nil {
		return
	}
	ep.cron.Start()
	ep.logger.Info("event publisher started")
}

// Stop gracefully stops the scheduler.
func (ep *EventPublisher) Stop(ctx context.Context) {
	if ep == nil || ep.cron == nil {
		return
	}
	stopCtx := ep.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ep.logger.Info("event publisher stopped")
}

// Publish sends the payload to the topic, buffering it on failure.
func (ep *EventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := ep.client.Publish(ctx, topic, body).Err(); err != nil {
		appLogger.WithRequestID(ctx, ep.logger).Warn("publish failed, buffering event",
			zap.String("topic", topic), zap.Error(err))
		return ep.store.Enqueue(outbox.Item{Topic: topic, Payload: body})
	}
	return nil
}

// Drain republishes buffered events in timestamp order.
func (ep *EventPublisher) Drain(ctx context.Context) error {
	if ep == nil || ep.store == nil {
		return nil
	}
	if ep.health != nil && !ep.health.RedisOnline() {
		ep.logger.Debug("skipping outbox drain (redis offline)")
		return nil
	}

	items, err := ep.store.GetBatch(ep.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ep.client.Publish(ctx, item.Topic, []byte(item.Payload)).Err(); err != nil {
			ep.logger.Error("failed to republish event",
				zap.String("item_id", item.ID),
				zap.String("topic", item.Topic),
				zap.Error(err))

			item.Retries++
			if item.Retries >= ep.cfg.MaxRetries {
				ep.logger.Warn("dropping event (max retries reached)", zap.String("item_id", item.ID))
				_ = ep.store.Remove(item)
				continue
			}

			if err := ep.store.Remove(item); err != nil {
				ep.logger.Warn("failed to remove outbox item", zap.Error(err))
			}
			if err := ep.store.Requeue(item); err != nil {
				ep.logger.Error("failed to requeue outbox item", zap.Error(err))
			}
			continue
		}

		if err := ep.store.Remove(item); err != nil {
			ep.logger.Warn("failed to purge published item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of buffered events.
func (ep *EventPublisher) Size() int {
	if ep == nil || ep.store == nil {
		return 0
	}
	size, err := ep.store.Size()
	if err != nil {
		return 0
	}
	return size
}
