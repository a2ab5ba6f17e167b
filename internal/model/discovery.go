package model

import "time"

// Discovery.Selos mirrors the number of DiscoverySeal rows and is only changed
// in the same transaction as those rows.
type Discovery struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Category    string           `gorm:"size:64;not null;index" json:"category"`
	AuthorID    string           `gorm:"size:36;not null;index" json:"authorId"`
	Status      ModerationStatus `gorm:"size:16;not null;default:Pendente;index:idx_discovery_status_time,priority:1" json:"status"`
	Selos       int64            `gorm:"not null;default:0" json:"selos"`
	Images      []DiscoveryImage `gorm:"foreignKey:DiscoveryID;constraint:OnDelete:CASCADE" json:"images"`
	SealGivers  []string         `gorm:"-" json:"sealGivers"`
	CreatedAt   time.Time        `gorm:"<-:create;index:idx_discovery_status_time,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type DiscoveryImage struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	DiscoveryID string `gorm:"size:36;not null;index:idx_discovery_image_pos,priority:1" json:"-"`
	Position    int    `gorm:"not null;index:idx_discovery_image_pos,priority:2" json:"-"`
	URL         string `gorm:"size:512;not null" json:"url"`
	Hint        string `gorm:"size:128" json:"hint"`
}

func (DiscoveryImage) TableName() string { return "discovery_images" }

// DiscoverySeal holds at most one row per (discovery, user).
type DiscoverySeal struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	DiscoveryID string `gorm:"size:36;not null;uniqueIndex:uk_discovery_user"`
	UserID      string `gorm:"size:36;not null;uniqueIndex:uk_discovery_user;index"`
	CreatedAt   time.Time
}

func (DiscoverySeal) TableName() string { return "discovery_seals" }
