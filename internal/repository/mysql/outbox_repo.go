package mysql

import (
	"context"
	"encoding/json"
	"time"

	"confrarias/internal/model"

	"gorm.io/gorm"
)

const (
	EventModerationStatusChanged = "moderation.status_changed"
	EventSealToggled             = "seal.toggled"
	EventSubmissionReceived      = "submission.received"

	MaxOutboxRetry = 5
)

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox must be called with the transaction that performs the change.
func insertOutbox(tx *gorm.DB, event, aggregateID string, fields map[string]any) error {
	fields["event_time"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return tx.Create(&model.OutboxEvent{
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List returns pending rows plus failed rows that still have retries left, oldest first.
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.OutboxEvent, error) {
	var list []model.OutboxEvent
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, MaxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
