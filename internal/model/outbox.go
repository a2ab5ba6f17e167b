package model

import "time"

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// OutboxEvent is written in the same transaction as the change it describes
// and relayed to kafka afterwards.
type OutboxEvent struct {
	ID          uint64 `gorm:"primaryKey"`
	EventType   string `gorm:"size:48;not null"`
	AggregateID string `gorm:"size:36;not null"`
	Payload     string `gorm:"type:text;not null"`
	Status      int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (OutboxEvent) TableName() string { return "outbox_events" }

// All lists every table managed by migrate.
func All() []any {
	return []any{
		&User{},
		&GalleryImage{},
		&Post{},
		&Event{},
		&Discovery{},
		&DiscoveryImage{},
		&DiscoverySeal{},
		&ConfrariaSubmission{},
		&ModerationAction{},
		&OutboxEvent{},
	}
}
