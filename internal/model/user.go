package model

import "time"

// User is the profile record. ID equals the auth subject id.
type User struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Username    string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Email       string         `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Role        Role           `gorm:"size:16;not null;default:Confrade;index" json:"role"`
	Status      UserStatus     `gorm:"size:16;not null;default:Ativo" json:"status"`
	Name        string         `gorm:"size:128" json:"name"`
	Phone       string         `gorm:"size:32" json:"phone"`
	District    string         `gorm:"size:64" json:"district"`
	Council     string         `gorm:"size:64" json:"council"`
	Address     string         `gorm:"size:255" json:"address"`
	Website     string         `gorm:"size:255" json:"website"`
	Description string         `gorm:"type:text" json:"description"`
	BannerURL   string         `gorm:"size:512" json:"bannerUrl,omitempty"`
	LogoURL     string         `gorm:"size:512" json:"logoUrl,omitempty"`
	Gallery     []GalleryImage `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"gallery"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// GalleryImage keeps its position so the gallery order survives reloads.
type GalleryImage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index:idx_gallery_user_pos,priority:1" json:"-"`
	Position  int       `gorm:"not null;index:idx_gallery_user_pos,priority:2" json:"-"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	Hint      string    `gorm:"size:128" json:"hint"`
	CreatedAt time.Time `json:"-"`
}

func (GalleryImage) TableName() string { return "gallery_images" }
