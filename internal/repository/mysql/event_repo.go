package mysql

import (
	"context"
	"time"

	"confrarias/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	if err := r.DB.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Updates(fields)
	return res.Error
}

// Delete is idempotent.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Event{}, "id = ?", id).Error
}

// ListByConfraria returns events ordered by date. A zero from lists past events too.
func (r *EventRepository) ListByConfraria(ctx context.Context, confrariaID string, from time.Time, limit int) ([]model.Event, error) {
	q := r.DB.WithContext(ctx).Where("confraria_id = ?", confrariaID)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	var list []model.Event
	err := q.Order("date ASC, id ASC").Limit(limit).Find(&list).Error
	return list, err
}

// ListUpcoming is the site-wide agenda.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Event, error) {
	var list []model.Event
	err := r.DB.WithContext(ctx).Where("date >= ?", from).Order("date ASC, id ASC").Limit(limit).Find(&list).Error
	return list, err
}
