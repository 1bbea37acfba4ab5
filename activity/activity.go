// Package activity writes and reads the append-only activity log.
//
// Record runs inside the caller's transaction under a savepoint: on success the
// entry commits together with the mutation it describes, on failure the savepoint
// is rolled back and the mutation proceeds without it.
package activity

import (
	"context"

	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/logutils"

	"gorm.io/gorm"
)

const (
	CreatedWorkspace = "created workspace"
	AddedMember      = "added member"
	CreatedProject   = "created project"
	CreatedBoard     = "created board"
	CreatedSprint    = "created sprint"
	CreatedTaskList  = "created task list"
	UpdatedTaskList  = "updated task list"
	DeletedTaskList  = "deleted task list"
	CreatedTask      = "created task"
	UpdatedTask      = "updated task"
	DeletedTask      = "deleted task"
	AssignedUser     = "assigned user"
	UnassignedUser   = "unassigned user"
	CommentedOnTask  = "commented on task"
	EditedComment    = "edited comment"
	DeletedComment   = "deleted comment"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Record appends one entry for an entity owned by workspaceID. It never
// returns an error; a failed write is logged.
func Record(tx *gorm.DB, userID, workspaceID uint, action, entityType string, entityID uint) {
	entry := &model.ActivityLog{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
	}
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(entry).Error
	})
	if err != nil {
		logutils.Log.WithFields(logutils.Fields{
			"user_id":      userID,
			"workspace_id": workspaceID,
			"action":       action,
			"entity_type":  entityType,
			"entity_id":    entityID,
		}).Warn("activity log write failed: ", err)
	}
}

// Entry is the read projection of a log row.
type Entry struct {
	model.ActivityLog
	User string `json:"user"`
}

// List returns entries about the workspaces userID belongs to, newest first.
func List(ctx context.Context, db *gorm.DB, userID uint, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	mine := db.Session(&gorm.Session{NewDB: true}).
		Model(&model.WorkspaceMember{}).Select("workspace_id").Where("user_id = ?", userID)

	var logs []model.ActivityLog
	err := db.WithContext(ctx).
		Preload("User").
		Where("workspace_id IN (?)", mine).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, errs.Internal("list activity", err)
	}
	entries := make([]Entry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, Entry{ActivityLog: l, User: l.User.Username})
	}
	return entries, nil
}
