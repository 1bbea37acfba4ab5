// Package collab handles task assignment and comments. Every operation is
// limited to members of the workspace owning the task.
package collab

import (
	"context"
	"strings"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/hierarchy"
	"taskboard/membership"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

// visibleTask loads a task the user can see and its chain.
func (s *Service) visibleTask(ctx context.Context, userID, taskID uint) (*model.Task, hierarchy.Chain, error) {
	var task model.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND id IN (?)", taskID, membership.TaskIDs(s.db, userID)).
		Take(&task).Error
	if err != nil {
		return nil, hierarchy.Chain{}, errs.FromStore(err, "Task")
	}
	chain, err := hierarchy.OfTask(ctx, s.db, &task)
	if err != nil {
		return nil, hierarchy.Chain{}, err
	}
	return &task, chain, nil
}

// Assign links userID to the task. The target must belong to the task's
// workspace; a repeated pair is a Conflict.
func (s *Service) Assign(ctx context.Context, actor model.Actor, taskID, userID uint) (*model.TaskAssignee, error) {
	if taskID == 0 || userID == 0 {
		return nil, errs.Validation("task and user are required")
	}
	var out *model.TaskAssignee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		svc := s.WithTx(tx)
		_, chain, err := svc.visibleTask(ctx, actor.UserID, taskID)
		if err != nil {
			return err
		}
		out, err = svc.AssignInWorkspace(ctx, actor, chain.WorkspaceID, taskID, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AssignInWorkspace is the assignment step once the task's workspace is known
// and the actor has been checked. Callers run it inside their transaction.
func (s *Service) AssignInWorkspace(ctx context.Context, actor model.Actor, workspaceID, taskID, userID uint) (*model.TaskAssignee, error) {
	ok, err := membership.NewRegistry(s.db).IsMember(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.Forbidden("User is not a workspace member")
	}
	var exists int64
	if err := s.db.WithContext(ctx).Model(&model.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&exists).Error; err != nil {
		return nil, errs.Internal("check assignee", err)
	}
	if exists > 0 {
		return nil, errs.Conflict("User is already assigned to this task")
	}
	a := &model.TaskAssignee{TaskID: taskID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		if errs.IsUniqueViolation(err) {
			return nil, errs.Conflict("User is already assigned to this task")
		}
		return nil, errs.Internal("create assignee", err)
	}
	activity.Record(s.db, actor.UserID, workspaceID, activity.AssignedUser, model.EntityTask, taskID)
	return a, nil
}

// Unassign removes an assignment on a task the actor can see.
func (s *Service) Unassign(ctx context.Context, actor model.Actor, assigneeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.TaskAssignee
		err := tx.Where("id = ? AND task_id IN (?)", assigneeID, membership.TaskIDs(tx, actor.UserID)).
			Take(&a).Error
		if err != nil {
			return errs.FromStore(err, "Assignment")
		}
		var task model.Task
		if err := tx.Select("id", "task_list_id").First(&task, a.TaskID).Error; err != nil {
			return errs.FromStore(err, "Task")
		}
		chain, err := hierarchy.OfTask(ctx, tx, &task)
		if err != nil {
			return err
		}
		if err := tx.Delete(&a).Error; err != nil {
			return errs.Internal("delete assignee", err)
		}
		activity.Record(tx, actor.UserID, chain.WorkspaceID, activity.UnassignedUser, model.EntityTask, a.TaskID)
		return nil
	})
}

// ListAssignees returns assignments visible to the actor, optionally for one task.
func (s *Service) ListAssignees(ctx context.Context, actor model.Actor, taskID uint) ([]model.TaskAssignee, error) {
	q := s.db.WithContext(ctx).Where("task_id IN (?)", membership.TaskIDs(s.db, actor.UserID))
	if taskID != 0 {
		q = q.Where("task_id = ?", taskID)
	}
	out := []model.TaskAssignee{}
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, errs.Internal("list assignees", err)
	}
	return out, nil
}

// CommentView is a comment with its author's username.
type CommentView struct {
	model.Comment
	User string `json:"user"`
}

// AddComment stores a comment authored by the actor.
func (s *Service) AddComment(ctx context.Context, actor model.Actor, taskID uint, message string) (*CommentView, error) {
	message = strings.TrimSpace(message)
	if taskID == 0 || message == "" {
		return nil, errs.Validation("task and message are required")
	}
	var out *CommentView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Select("id", "task_list_id").First(&task, taskID).Error; err != nil {
			return errs.FromStore(err, "Task")
		}
		chain, err := hierarchy.OfTask(ctx, tx, &task)
		if err != nil {
			return err
		}
		ok, err := membership.NewRegistry(tx).IsMember(ctx, actor.UserID, chain.WorkspaceID)
		if err != nil {
			return err
		}
		if !ok {
			return errs.Forbidden("You are not a workspace member")
		}
		c := &model.Comment{TaskID: taskID, UserID: actor.UserID, Message: message}
		if err := tx.Create(c).Error; err != nil {
			return errs.Internal("create comment", err)
		}
		activity.Record(tx, actor.UserID, chain.WorkspaceID, activity.CommentedOnTask, model.EntityTask, taskID)
		out = &CommentView{Comment: *c, User: actor.Username}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ownComment loads a comment on a task the actor can see. Only the author may
// change it; other members get Forbidden.
func ownComment(ctx context.Context, tx *gorm.DB, actor model.Actor, id uint) (*model.Comment, hierarchy.Chain, error) {
	var c model.Comment
	err := tx.WithContext(ctx).
		Where("id = ? AND task_id IN (?)", id, membership.TaskIDs(tx, actor.UserID)).
		Take(&c).Error
	if err != nil {
		return nil, hierarchy.Chain{}, errs.FromStore(err, "Comment")
	}
	if c.UserID != actor.UserID {
		return nil, hierarchy.Chain{}, errs.Forbidden("You can only change your own comments")
	}
	var task model.Task
	if err := tx.WithContext(ctx).Select("id", "task_list_id").First(&task, c.TaskID).Error; err != nil {
		return nil, hierarchy.Chain{}, errs.FromStore(err, "Task")
	}
	chain, err := hierarchy.OfTask(ctx, tx, &task)
	if err != nil {
		return nil, hierarchy.Chain{}, err
	}
	return &c, chain, nil
}

// UpdateComment replaces the message of the actor's own comment. Task and
// author never change.
func (s *Service) UpdateComment(ctx context.Context, actor model.Actor, id uint, message string) (*CommentView, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errs.Validation("message is required")
	}
	var out *CommentView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, chain, err := ownComment(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Model(c).Update("message", message).Error; err != nil {
			return errs.Internal("update comment", err)
		}
		c.Message = message
		activity.Record(tx, actor.UserID, chain.WorkspaceID, activity.EditedComment, model.EntityComment, c.ID)
		out = &CommentView{Comment: *c, User: actor.Username}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteComment(ctx context.Context, actor model.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, chain, err := ownComment(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(c).Error; err != nil {
			return errs.Internal("delete comment", err)
		}
		activity.Record(tx, actor.UserID, chain.WorkspaceID, activity.DeletedComment, model.EntityComment, c.ID)
		return nil
	})
}

// ListComments returns comments visible to the actor, oldest first.
func (s *Service) ListComments(ctx context.Context, actor model.Actor, taskID uint) ([]CommentView, error) {
	q := s.db.WithContext(ctx).Preload("User").Where("task_id IN (?)", membership.TaskIDs(s.db, actor.UserID))
	if taskID != 0 {
		q = q.Where("task_id = ?", taskID)
	}
	var comments []model.Comment
	if err := q.Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, errs.Internal("list comments", err)
	}
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentView{Comment: c, User: c.User.Username})
	}
	return out, nil
}
