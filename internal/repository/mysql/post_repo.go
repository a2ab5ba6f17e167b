package mysql

import (
	"context"
	"time"

	"confrarias/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.DB.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&model.Post{}, "id = ?", id).Error
}

// ListByConfrariaCursor uses (created_at, id) as a strict cursor over the
// (confraria_id, created_at DESC) index; a zero lastCreatedAt is the first page.
func (r *PostRepository) ListByConfrariaCursor(ctx context.Context, confrariaID, lastID string, lastCreatedAt time.Time, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.WithContext(ctx).Where("confraria_id = ?", confrariaID)
	if !lastCreatedAt.IsZero() {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}
