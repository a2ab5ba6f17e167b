package mysql

import (
	"context"

	"confrarias/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

type UserFilter struct {
	Role   model.Role
	Status model.UserStatus
	Offset int
	Limit  int
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ? OR email = ?", username, username).First(&user).Error
	return &user, notFound(err)
}

// FindByID loads the profile with its gallery in display order.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Preload("Gallery", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&user, "id = ?", id).Error
	return &user, notFound(err)
}

// FindCaller is the cheap lookup used on every authenticated request.
func (r *UserRepository) FindCaller(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Select("id", "role", "status").First(&user, "id = ?", id).Error
	return &user, notFound(err)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&usr).Error
	return &usr, notFound(err)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, newPassword string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("password", newPassword).Error
}

// UpdateFields applies a column -> value map; the caller whitelists columns.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// mysql reports 0 for rows matched but unchanged, so confirm existence
		var n int64
		if err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, error) {
	q := r.DB.WithContext(ctx).Model(&model.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	var list []model.User
	err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&list).Error
	return list, err
}

// AddGalleryImage appends at the end of the gallery.
func (r *UserRepository) AddGalleryImage(ctx context.Context, img *model.GalleryImage) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&owner, "id = ?", img.UserID).Error; err != nil {
			return notFound(err)
		}
		var maxPos *int
		if err := tx.Model(&model.GalleryImage{}).Where("user_id = ?", img.UserID).
			Select("MAX(position)").Scan(&maxPos).Error; err != nil {
			return err
		}
		img.Position = 0
		if maxPos != nil {
			img.Position = *maxPos + 1
		}
		return tx.Create(img).Error
	})
}

func (r *UserRepository) RemoveGalleryImage(ctx context.Context, userID, imageID string) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", imageID, userID).Delete(&model.GalleryImage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
