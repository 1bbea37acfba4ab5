package gateway

import (
	"context"
	"strings"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/hierarchy"
	"taskboard/membership"
)

func (g *Gateway) CreateProject(ctx context.Context, actor model.Actor, name string, workspaceID uint) (*model.Project, error) {
	if err := requireOperator(actor, "projects"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || workspaceID == 0 {
		return nil, errs.Validation("name and workspace are required")
	}
	creator := actor.UserID
	p := &model.Project{Name: name, WorkspaceID: workspaceID, CreatedByID: &creator}
	err := g.transaction(ctx, func(tg *Gateway) error {
		var ws model.Workspace
		if err := tg.db.Select("id").First(&ws, workspaceID).Error; err != nil {
			return errs.FromStore(err, "Workspace")
		}
		if err := tg.db.Create(p).Error; err != nil {
			return errs.Internal("create project", err)
		}
		activity.Record(tg.db, actor.UserID, workspaceID, activity.CreatedProject, model.EntityProject, p.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns visible projects, optionally within one workspace.
func (g *Gateway) ListProjects(ctx context.Context, actor model.Actor, workspaceID uint) ([]model.Project, error) {
	q := g.db.WithContext(ctx).Where("workspace_id IN (?)", membership.WorkspaceIDs(g.db, actor.UserID))
	if workspaceID != 0 {
		q = q.Where("workspace_id = ?", workspaceID)
	}
	projects := []model.Project{}
	if err := q.Order("id").Find(&projects).Error; err != nil {
		return nil, errs.Internal("list projects", err)
	}
	return projects, nil
}

func (g *Gateway) GetProject(ctx context.Context, actor model.Actor, id uint) (*model.Project, error) {
	var p model.Project
	err := g.db.WithContext(ctx).
		Where("id = ? AND workspace_id IN (?)", id, membership.WorkspaceIDs(g.db, actor.UserID)).
		Take(&p).Error
	if err != nil {
		return nil, errs.FromStore(err, "Project")
	}
	return &p, nil
}

// BoardView is a board with its columns.
type BoardView struct {
	model.Board
	Workspace uint             `json:"workspace"`
	TaskLists []model.TaskList `json:"task_lists"`
}

// CreateBoard creates a board and its default columns in one transaction.
func (g *Gateway) CreateBoard(ctx context.Context, actor model.Actor, name string, projectID uint) (*BoardView, error) {
	if err := requireOperator(actor, "boards"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || projectID == 0 {
		return nil, errs.Validation("name and project are required")
	}
	view := &BoardView{Board: model.Board{Name: name, ProjectID: projectID}}
	err := g.transaction(ctx, func(tg *Gateway) error {
		chain, err := hierarchy.OfProject(ctx, tg.db, projectID)
		if err != nil {
			return err
		}
		if err := tg.db.Create(&view.Board).Error; err != nil {
			return errs.Internal("create board", err)
		}
		lists, err := tg.engine.ProvisionBoard(ctx, view.ID)
		if err != nil {
			return err
		}
		view.Workspace = chain.WorkspaceID
		view.TaskLists = lists
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.CreatedBoard, model.EntityBoard, view.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListBoards returns visible boards, optionally within one project.
func (g *Gateway) ListBoards(ctx context.Context, actor model.Actor, projectID uint) ([]model.Board, error) {
	q := g.db.WithContext(ctx).Where("id IN (?)", membership.BoardIDs(g.db, actor.UserID))
	if projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	boards := []model.Board{}
	if err := q.Order("id").Find(&boards).Error; err != nil {
		return nil, errs.Internal("list boards", err)
	}
	return boards, nil
}

func (g *Gateway) GetBoard(ctx context.Context, actor model.Actor, id uint) (*BoardView, error) {
	chain, err := g.visibleBoard(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view := &BoardView{Workspace: chain.WorkspaceID}
	if err := g.db.WithContext(ctx).First(&view.Board, id).Error; err != nil {
		return nil, errs.FromStore(err, "Board")
	}
	if err := g.db.WithContext(ctx).Where("board_id = ?", id).Order("position, id").Find(&view.TaskLists).Error; err != nil {
		return nil, errs.Internal("load columns", err)
	}
	return view, nil
}

// visibleBoard resolves a board's chain and hides it from non-members.
func (g *Gateway) visibleBoard(ctx context.Context, actor model.Actor, id uint) (hierarchy.Chain, error) {
	chain, err := hierarchy.OfBoard(ctx, g.db, id)
	if err != nil {
		return hierarchy.Chain{}, err
	}
	if err := g.members.RequireMember(ctx, actor.UserID, chain.WorkspaceID, "Board"); err != nil {
		return hierarchy.Chain{}, err
	}
	return chain, nil
}

// ListTaskLists returns visible columns in display order, optionally for one board.
func (g *Gateway) ListTaskLists(ctx context.Context, actor model.Actor, boardID uint) ([]model.TaskList, error) {
	q := g.db.WithContext(ctx).Where("board_id IN (?)", membership.BoardIDs(g.db, actor.UserID))
	if boardID != 0 {
		q = q.Where("board_id = ?", boardID)
	}
	lists := []model.TaskList{}
	if err := q.Order("board_id, position, id").Find(&lists).Error; err != nil {
		return nil, errs.Internal("list task lists", err)
	}
	return lists, nil
}
