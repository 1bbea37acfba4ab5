package gateway

import (
	"context"

	"taskboard/activity"
	"taskboard/collab"
	"taskboard/dao/model"
)

func (g *Gateway) Assign(ctx context.Context, actor model.Actor, taskID, userID uint) (*model.TaskAssignee, error) {
	return g.collab.Assign(ctx, actor, taskID, userID)
}

func (g *Gateway) Unassign(ctx context.Context, actor model.Actor, assigneeID uint) error {
	return g.collab.Unassign(ctx, actor, assigneeID)
}

func (g *Gateway) ListAssignees(ctx context.Context, actor model.Actor, taskID uint) ([]model.TaskAssignee, error) {
	return g.collab.ListAssignees(ctx, actor, taskID)
}

func (g *Gateway) AddComment(ctx context.Context, actor model.Actor, taskID uint, message string) (*collab.CommentView, error) {
	return g.collab.AddComment(ctx, actor, taskID, message)
}

func (g *Gateway) ListComments(ctx context.Context, actor model.Actor, taskID uint) ([]collab.CommentView, error) {
	return g.collab.ListComments(ctx, actor, taskID)
}

// ListActivity returns entries about the actor's workspaces.
func (g *Gateway) ListActivity(ctx context.Context, actor model.Actor, limit int) ([]activity.Entry, error) {
	return activity.List(ctx, g.db, actor.UserID, limit)
}

func (g *Gateway) UpdateComment(ctx context.Context, actor model.Actor, id uint, message string) (*collab.CommentView, error) {
	return g.collab.UpdateComment(ctx, actor, id, message)
}

func (g *Gateway) DeleteComment(ctx context.Context, actor model.Actor, id uint) error {
	return g.collab.DeleteComment(ctx, actor, id)
}
