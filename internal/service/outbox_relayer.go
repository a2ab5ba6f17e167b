package service

import (
	"context"
	"time"

	"confrarias/internal/metrics"
	"confrarias/internal/model"
	"confrarias/internal/pkg"
	"confrarias/internal/repository/mysql"

	"go.uber.org/zap"
)

type Sender func(ctx context.Context, ob *model.OutboxEvent) error

// OutboxRelayer moves committed outbox rows to kafka.
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
	log       *zap.Logger
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, sender Sender, batchSize int, interval time.Duration, log *zap.Logger) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: batchSize,
		interval:  interval,
		sender:    sender,
		log:       log,
	}
}

// Run polls until ctx is cancelled.
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce sends one batch and returns how many rows were delivered.
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.log.Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			metrics.OutboxDeliveries.WithLabelValues("failed").Inc()
			r.log.Warn("outbox send failed",
				zap.Uint64("id", ob.ID),
				zap.String("event_type", ob.EventType),
				zap.Int("retry", ob.Retry),
				zap.Error(err),
			)
			if err = r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				r.log.Error("outbox retry update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		metrics.OutboxDeliveries.WithLabelValues("sent").Inc()
		if err = r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.log.Error("outbox success update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender keys messages by aggregate id.
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.OutboxEvent) error {
		return p.Send(ctx, ob.AggregateID, []byte(ob.Payload), map[string]string{
			"event_type": ob.EventType,
		})
	}
}

// LogSender is used when kafka is disabled.
func LogSender(log *zap.Logger) Sender {
	return func(ctx context.Context, ob *model.OutboxEvent) error {
		log.Info("outbox event",
			zap.String("event_type", ob.EventType),
			zap.String("aggregate_id", ob.AggregateID),
			zap.String("payload", ob.Payload),
		)
		return nil
	}
}
