// Package hierarchy resolves the containment chain
// Workspace → Project → Board → TaskList → Task for stored entities.
// Derived fields such as a task's workspace are computed here on read, never stored.
package hierarchy

import (
	"context"

	"taskboard/dao/model"
	"taskboard/errs"

	"gorm.io/gorm"
)

// Chain is the set of ancestors of an entity. Fields below the entity's own
// level are zero.
type Chain struct {
	WorkspaceID uint
	ProjectID   uint
	BoardID     uint
	TaskListID  uint
}

func chainQuery(db *gorm.DB) *gorm.DB {
	return db.Table("task_list").
		Select("task_list.id AS task_list_id, board.id AS board_id, project.id AS project_id, project.workspace_id AS workspace_id").
		Joins("JOIN board ON board.id = task_list.board_id").
		Joins("JOIN project ON project.id = board.project_id")
}

// OfTaskLists resolves chains for many columns in one query.
func OfTaskLists(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]Chain, error) {
	out := make(map[uint]Chain, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var chains []Chain
	if err := chainQuery(db.WithContext(ctx)).Where("task_list.id IN ?", ids).Scan(&chains).Error; err != nil {
		return nil, errs.Internal("resolve task list chain", err)
	}
	for _, c := range chains {
		out[c.TaskListID] = c
	}
	return out, nil
}

func OfTaskList(ctx context.Context, db *gorm.DB, id uint) (Chain, error) {
	chains, err := OfTaskLists(ctx, db, []uint{id})
	if err != nil {
		return Chain{}, err
	}
	c, ok := chains[id]
	if !ok {
		return Chain{}, errs.NotFound("Task list not found")
	}
	return c, nil
}

func OfTask(ctx context.Context, db *gorm.DB, task *model.Task) (Chain, error) {
	c, err := OfTaskList(ctx, db, task.TaskListID)
	if err != nil {
		return Chain{}, errs.NotFound("Task not found")
	}
	return c, nil
}

func OfBoard(ctx context.Context, db *gorm.DB, id uint) (Chain, error) {
	var c Chain
	err := db.WithContext(ctx).Table("board").
		Select("board.id AS board_id, project.id AS project_id, project.workspace_id AS workspace_id").
		Joins("JOIN project ON project.id = board.project_id").
		Where("board.id = ?", id).
		Scan(&c).Error
	if err != nil {
		return Chain{}, errs.Internal("resolve board chain", err)
	}
	if c.BoardID == 0 {
		return Chain{}, errs.NotFound("Board not found")
	}
	return c, nil
}

func OfProject(ctx context.Context, db *gorm.DB, id uint) (Chain, error) {
	var p model.Project
	if err := db.WithContext(ctx).Select("id", "workspace_id").First(&p, id).Error; err != nil {
		return Chain{}, errs.FromStore(err, "Project")
	}
	return Chain{WorkspaceID: p.WorkspaceID, ProjectID: p.ID}, nil
}
