package model

import "time"

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	WorkspaceID uint      `gorm:"not null;index" json:"workspace"`
	CreatedByID *uint     `gorm:"column:created_by_id" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`

	Workspace Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedBy *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Project) TableName() string { return "project" }

type Board struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`

	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Board) TableName() string { return "board" }
