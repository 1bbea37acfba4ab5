package model

import (
	"time"

	"gorm.io/gorm"
)

type Workspace struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint      `gorm:"column:owner_id;not null;index" json:"owner"`
	Owner     User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Workspace) TableName() string { return "workspace" }

// WorkspaceMember enrolls a user in a workspace. (user, workspace) is unique.
type WorkspaceMember struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;uniqueIndex:idx_member_user_workspace" json:"user_id"`
	WorkspaceID uint          `gorm:"not null;uniqueIndex:idx_member_user_workspace;index" json:"workspace"`
	Role        WorkspaceRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time     `json:"joined_at"`

	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WorkspaceMember) TableName() string { return "workspace_member" }

func (m *WorkspaceMember) BeforeCreate(_ *gorm.DB) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
