package mysql

import (
	"context"

	"confrarias/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func (r *SubmissionRepository) Create(ctx context.Context, s *model.ConfrariaSubmission) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventSubmissionReceived, s.ID, map[string]any{
			"id":             s.ID,
			"confraria_name": s.ConfrariaName,
			"district":       s.District,
		})
	})
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*model.ConfrariaSubmission, error) {
	var s model.ConfrariaSubmission
	err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// List is ordered newest first. Empty status lists every submission.
func (r *SubmissionRepository) List(ctx context.Context, status model.ModerationStatus, offset, limit int) ([]model.ConfrariaSubmission, error) {
	q := r.DB.WithContext(ctx).Model(&model.ConfrariaSubmission{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []model.ConfrariaSubmission
	err := q.Order("submitted_at DESC, id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}
