package mysql

import (
	"context"
	"time"

	"confrarias/internal/model"

	"gorm.io/gorm"
)

type DiscoveryRepository struct {
	DB *gorm.DB
}

type DiscoveryCursor struct {
	LastID        string
	LastCreatedAt time.Time
}

func (r *DiscoveryRepository) Create(ctx context.Context, d *model.Discovery) error {
	for i := range d.Images {
		d.Images[i].Position = i
	}
	return r.DB.WithContext(ctx).Create(d).Error
}

// FindByID loads images in order and the current seal givers.
func (r *DiscoveryRepository) FindByID(ctx context.Context, id string) (*model.Discovery, error) {
	var d model.Discovery
	err := r.DB.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	givers, err := r.SealGivers(ctx, id)
	if err != nil {
		return nil, err
	}
	d.SealGivers = givers
	return &d, nil
}

func (r *DiscoveryRepository) SealGivers(ctx context.Context, discoveryID string) ([]string, error) {
	givers := []string{}
	err := r.DB.WithContext(ctx).Model(&model.DiscoverySeal{}).
		Where("discovery_id = ?", discoveryID).
		Order("id ASC").
		Pluck("user_id", &givers).Error
	return givers, err
}

// ListByStatus pages newest first using (created_at, id) as a strict cursor.
// An empty status lists every discovery.
func (r *DiscoveryRepository) ListByStatus(ctx context.Context, status model.ModerationStatus, cur DiscoveryCursor, limit int) ([]model.Discovery, error) {
	q := r.DB.WithContext(ctx).Model(&model.Discovery{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if !cur.LastCreatedAt.IsZero() {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", cur.LastCreatedAt, cur.LastCreatedAt, cur.LastID)
	}
	var list []model.Discovery
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	if err := r.loadSealGivers(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadSealGivers fills SealGivers for a page with one query.
func (r *DiscoveryRepository) loadSealGivers(ctx context.Context, list []model.Discovery) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	byID := make(map[string]*model.Discovery, len(list))
	for i := range list {
		list[i].SealGivers = []string{}
		ids[i] = list[i].ID
		byID[list[i].ID] = &list[i]
	}
	var seals []model.DiscoverySeal
	if err := r.DB.WithContext(ctx).
		Select("discovery_id", "user_id").
		Where("discovery_id IN ?", ids).
		Order("id ASC").
		Find(&seals).Error; err != nil {
		return err
	}
	for _, s := range seals {
		if d, ok := byID[s.DiscoveryID]; ok {
			d.SealGivers = append(d.SealGivers, s.UserID)
		}
	}
	return nil
}

// SealedBy reports which of the given discoveries the user has sealed.
func (r *DiscoveryRepository) SealedBy(ctx context.Context, userID string, discoveryIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(discoveryIDs))
	if userID == "" || len(discoveryIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.DB.WithContext(ctx).Model(&model.DiscoverySeal{}).
		Where("user_id = ? AND discovery_id IN ?", userID, discoveryIDs).
		Pluck("discovery_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
