package gateway

import (
	"context"
	"strings"
	"unicode/utf8"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/hierarchy"
	"taskboard/membership"
	"taskboard/placement"
)

const maxColumnTitle = 100

// TaskListInput is a new column. A nil Position appends it after the last column.
type TaskListInput struct {
	Board    uint
	Title    string
	Position *int
}

// TaskListPatch renames or reorders a column; nil fields are left alone.
type TaskListPatch struct {
	Title    *string
	Position *int
}

func columnTitle(s string) (string, error) {
	title := strings.TrimSpace(s)
	if title == "" {
		return "", errs.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxColumnTitle {
		return "", errs.Validation("title must be at most %d characters", maxColumnTitle)
	}
	return title, nil
}

// CreateTaskList adds a column to a board the actor belongs to.
func (g *Gateway) CreateTaskList(ctx context.Context, actor model.Actor, in TaskListInput) (*model.TaskList, error) {
	if in.Board == 0 {
		return nil, errs.Validation("board is required")
	}
	title, err := columnTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if in.Position != nil {
		if err := checkPosition(*in.Position); err != nil {
			return nil, err
		}
	}
	list := &model.TaskList{BoardID: in.Board, Title: title}
	err = g.transaction(ctx, func(tg *Gateway) error {
		chain, err := tg.visibleBoard(ctx, actor, in.Board)
		if err != nil {
			return err
		}
		if err := tg.uniqueTitle(ctx, in.Board, 0, title); err != nil {
			return err
		}
		if in.Position != nil {
			list.Position = *in.Position
		} else {
			var last int
			err := tg.db.Model(&model.TaskList{}).
				Where("board_id = ?", in.Board).
				Select("COALESCE(MAX(position), 0)").
				Scan(&last).Error
			if err != nil {
				return errs.Internal("next column position", err)
			}
			list.Position = last + 1
		}
		if err := tg.db.Create(list).Error; err != nil {
			return errs.Internal("create task list", err)
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.CreatedTaskList, model.EntityTaskList, list.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateTaskList renames or reorders a column. A column holding tasks keeps
// the status it stands for: it may change case but not map elsewhere.
func (g *Gateway) UpdateTaskList(ctx context.Context, actor model.Actor, id uint, patch TaskListPatch) (*model.TaskList, error) {
	var list *model.TaskList
	err := g.transaction(ctx, func(tg *Gateway) error {
		var chain hierarchy.Chain
		var err error
		list, chain, err = tg.visibleTaskList(ctx, actor, id)
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if patch.Title != nil {
			title, err := columnTitle(*patch.Title)
			if err != nil {
				return err
			}
			if !strings.EqualFold(title, list.Title) {
				if err := tg.uniqueTitle(ctx, list.BoardID, list.ID, title); err != nil {
					return err
				}
				was, _ := placement.StatusOf(list.Title)
				now, _ := placement.StatusOf(title)
				if was != now {
					if err := tg.requireEmpty(ctx, list); err != nil {
						return err
					}
				}
			}
			updates["title"] = title
		}
		if patch.Position != nil {
			if err := checkPosition(*patch.Position); err != nil {
				return err
			}
			updates["position"] = *patch.Position
		}
		if len(updates) > 0 {
			if err := tg.db.Model(list).Updates(updates).Error; err != nil {
				return errs.Internal("update task list", err)
			}
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.UpdatedTaskList, model.EntityTaskList, list.ID)
		if err := tg.db.First(list, list.ID).Error; err != nil {
			return errs.FromStore(err, "Task list")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteTaskList removes an empty column.
func (g *Gateway) DeleteTaskList(ctx context.Context, actor model.Actor, id uint) error {
	return g.transaction(ctx, func(tg *Gateway) error {
		list, chain, err := tg.visibleTaskList(ctx, actor, id)
		if err != nil {
			return err
		}
		if err := tg.requireEmpty(ctx, list); err != nil {
			return err
		}
		if err := tg.db.Delete(list).Error; err != nil {
			return errs.Internal("delete task list", err)
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.DeletedTaskList, model.EntityTaskList, list.ID)
		return nil
	})
}

func (g *Gateway) visibleTaskList(ctx context.Context, actor model.Actor, id uint) (*model.TaskList, hierarchy.Chain, error) {
	var list model.TaskList
	err := g.db.WithContext(ctx).
		Where("id = ? AND id IN (?)", id, membership.TaskListIDs(g.db, actor.UserID)).
		Take(&list).Error
	if err != nil {
		return nil, hierarchy.Chain{}, errs.FromStore(err, "Task list")
	}
	chain, err := hierarchy.OfTaskList(ctx, g.db, list.ID)
	if err != nil {
		return nil, hierarchy.Chain{}, err
	}
	return &list, chain, nil
}

// uniqueTitle rejects a second column with the same title on a board, since
// placement looks columns up by title.
func (g *Gateway) uniqueTitle(ctx context.Context, boardID, exceptID uint, title string) error {
	var n int64
	err := g.db.WithContext(ctx).Model(&model.TaskList{}).
		Where("board_id = ? AND id <> ? AND LOWER(title) = ?", boardID, exceptID, strings.ToLower(title)).
		Count(&n).Error
	if err != nil {
		return errs.Internal("check column title", err)
	}
	if n > 0 {
		return errs.Conflict("Board already has a %q column", title)
	}
	return nil
}

func (g *Gateway) requireEmpty(ctx context.Context, list *model.TaskList) error {
	var n int64
	if err := g.db.WithContext(ctx).Model(&model.Task{}).Where("task_list_id = ?", list.ID).Count(&n).Error; err != nil {
		return errs.Internal("count column tasks", err)
	}
	if n > 0 {
		return errs.Conflict("Column %q still holds tasks", list.Title)
	}
	return nil
}
