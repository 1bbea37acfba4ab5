package model

import "time"

// ActivityLog is append-only. Entries reference entities and their workspace
// by id only, so they outlive the entities they describe.
type ActivityLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	WorkspaceID uint      `gorm:"not null;default:0;index" json:"workspace"`
	Action      string    `gorm:"type:varchar(255);not null" json:"action"`
	EntityType  string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID    uint      `gorm:"not null" json:"entity_id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ActivityLog) TableName() string { return "activity_log" }
