package model

import (
	"time"

	"gorm.io/datatypes"
)

// TaskList is a board column. Position orders columns within a board.
type TaskList struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BoardID  uint   `gorm:"not null;index" json:"board"`
	Title    string `gorm:"type:varchar(100);not null" json:"title"`
	Position int    `gorm:"not null" json:"position"`

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TaskList) TableName() string { return "task_list" }

type Sprint struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	BoardID   uint           `gorm:"not null;index" json:"board"`
	StartDate datatypes.Date `gorm:"not null" json:"-"`
	EndDate   datatypes.Date `gorm:"not null" json:"-"`
	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`

	Board Board `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Sprint) TableName() string { return "sprint" }

type Task struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Description *string         `gorm:"type:text"`
	WorkType    WorkType        `gorm:"type:varchar(20);not null;default:TASK"`
	Status      TaskStatus      `gorm:"type:varchar(20);not null;default:TODO"`
	Priority    Priority        `gorm:"type:varchar(10);not null;default:MEDIUM"`
	TaskListID  uint            `gorm:"not null;index"`
	Position    int             `gorm:"not null;default:0"`
	ParentID    *uint           `gorm:"index"`
	SprintID    *uint           `gorm:"index"`
	StartDate   *datatypes.Date
	DueDate     *datatypes.Date
	StoryPoints *int
	CreatedByID *uint `gorm:"column:created_by_id"`
	CreatedAt   time.Time

	TaskList  TaskList `gorm:"foreignKey:TaskListID;constraint:OnDelete:CASCADE"`
	Parent    *Task    `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL"`
	Sprint    *Sprint  `gorm:"foreignKey:SprintID;constraint:OnDelete:SET NULL"`
	CreatedBy *User    `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
}

func (Task) TableName() string { return "task" }

// TaskAssignee links a task to a user. (task, user) is unique.
type TaskAssignee struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	TaskID uint `gorm:"not null;uniqueIndex:idx_assignee_task_user" json:"task"`
	UserID uint `gorm:"not null;uniqueIndex:idx_assignee_task_user;index" json:"user"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TaskAssignee) TableName() string { return "task_assignee" }

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index" json:"task"`
	UserID    uint      `gorm:"not null" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string { return "comment" }
