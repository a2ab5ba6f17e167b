package model

import "time"

type Post struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ConfrariaID string    `gorm:"size:36;not null;index:idx_confraria_time_id,priority:1" json:"confrariaId"`
	AuthorID    string    `gorm:"size:36;not null;index:idx_author_time" json:"authorId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl,omitempty"`
	Tags        string    `gorm:"size:255" json:"tags"` // comma separated
	Likes       int64     `gorm:"not null;default:0" json:"likes"`
	Comments    int64     `gorm:"not null;default:0" json:"comments"`
	CreatedAt   time.Time `gorm:"index:idx_confraria_time_id,priority:2,sort:desc;index:idx_author_time" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Event struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	ConfrariaID string    `gorm:"size:36;not null;index:idx_event_confraria_date,priority:1" json:"confrariaId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Date        time.Time `gorm:"not null;index:idx_event_confraria_date,priority:2" json:"date"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
