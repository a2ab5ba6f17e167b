package model

import "time"

// ConfrariaSubmission is the public signup form for a new confraria.
type ConfrariaSubmission struct {
	ID              string           `gorm:"primaryKey;size:36" json:"id"`
	ConfrariaName   string           `gorm:"size:200;not null" json:"confrariaName"`
	ResponsibleName string           `gorm:"size:128;not null" json:"responsibleName"`
	Email           string           `gorm:"size:128;not null" json:"email"`
	Phone           string           `gorm:"size:32" json:"phone"`
	District        string           `gorm:"size:64;not null" json:"district"`
	Council         string           `gorm:"size:64;not null" json:"council"`
	Description     string           `gorm:"type:text" json:"description"`
	Status          ModerationStatus `gorm:"size:16;not null;default:Pendente;index" json:"status"`
	SubmittedAt     time.Time        `gorm:"<-:create;index" json:"submittedAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (ConfrariaSubmission) TableName() string { return "confraria_submissions" }

// ModerationAction is the audit trail of effective status changes.
type ModerationAction struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TargetKind string           `gorm:"size:16;not null;index:idx_moderation_target,priority:1" json:"targetKind"`
	TargetID   string           `gorm:"size:36;not null;index:idx_moderation_target,priority:2" json:"targetId"`
	FromStatus ModerationStatus `gorm:"size:16;not null" json:"fromStatus"`
	ToStatus   ModerationStatus `gorm:"size:16;not null" json:"toStatus"`
	ActorID    string           `gorm:"size:36;not null" json:"actorId"`
	CreatedAt  time.Time        `json:"createdAt"`
}

func (ModerationAction) TableName() string { return "moderation_actions" }
