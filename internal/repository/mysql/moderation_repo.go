package mysql

import (
	"context"
	"fmt"
	"time"

	"confrarias/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModerationRepository struct {
	DB *gorm.DB
}

func tableFor(kind model.ModerationTarget) (string, error) {
	switch kind {
	case model.TargetDiscovery:
		return "discoveries", nil
	case model.TargetSubmission:
		return "confraria_submissions", nil
	}
	return "", fmt.Errorf("unknown moderation target %q", kind)
}

// SetStatus overwrites the status of a discovery or submission. When the
// status really changes it also records an audit row and an outbox event, all
// in one transaction. Setting the current status again writes nothing.
func (r *ModerationRepository) SetStatus(ctx context.Context, kind model.ModerationTarget, id string, to model.ModerationStatus, actorID string) (from model.ModerationStatus, changed bool, err error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", false, err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			Status model.ModerationStatus
		}
		if err := tx.Table(table).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("status").
			Where("id = ?", id).
			Take(&row).Error; err != nil {
			return notFound(err)
		}
		from = row.Status
		if from == to {
			return nil
		}
		if err := tx.Table(table).Where("id = ?", id).
			Updates(map[string]any{"status": to, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		changed = true
		if err := tx.Create(&model.ModerationAction{
			TargetKind: string(kind),
			TargetID:   id,
			FromStatus: from,
			ToStatus:   to,
			ActorID:    actorID,
		}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventModerationStatusChanged, id, map[string]any{
			"target": string(kind),
			"id":     id,
			"from":   string(from),
			"to":     string(to),
			"actor":  actorID,
		})
	})
	if err != nil {
		return "", false, err
	}
	return from, changed, nil
}

// ListActions returns the audit trail, newest first. Empty targetID lists all.
func (r *ModerationRepository) ListActions(ctx context.Context, kind model.ModerationTarget, targetID string, limit int) ([]model.ModerationAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.DB.WithContext(ctx).Model(&model.ModerationAction{})
	if kind != "" {
		q = q.Where("target_kind = ?", kind)
	}
	if targetID != "" {
		q = q.Where("target_id = ?", targetID)
	}
	var list []model.ModerationAction
	err := q.Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}
