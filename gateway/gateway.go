// Package gateway is the authorization layer in front of every read and write.
//
// Reads require membership in the owning workspace and silently filter out
// everything else. Workspace, project and board creation require the site
// operator capability. Column, task, comment and assignment writes require
// only membership in the owning workspace.
package gateway

import (
	"context"

	"taskboard/collab"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/membership"
	"taskboard/placement"

	"gorm.io/gorm"
)

type Gateway struct {
	db      *gorm.DB
	members *membership.Registry
	engine  *placement.Engine
	collab  *collab.Service
}

func New(db *gorm.DB) *Gateway {
	return &Gateway{
		db:      db,
		members: membership.NewRegistry(db),
		engine:  placement.NewEngine(db),
		collab:  collab.NewService(db),
	}
}

// withTx returns a Gateway whose collaborators all run on tx.
func (g *Gateway) withTx(tx *gorm.DB) *Gateway {
	return &Gateway{
		db:      tx,
		members: g.members.WithTx(tx),
		engine:  g.engine.WithTx(tx),
		collab:  g.collab.WithTx(tx),
	}
}

func (g *Gateway) transaction(ctx context.Context, fn func(tg *Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(g.withTx(tx))
	})
}

func fresh(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

func requireOperator(actor model.Actor, what string) error {
	if !actor.Operator {
		return errs.Forbidden("Only admins can create %s", what)
	}
	return nil
}

// requireWorkspaceAdmin admits site operators and workspace ADMINs. Non-members
// get NotFound so the workspace's existence is not revealed.
func (g *Gateway) requireWorkspaceAdmin(ctx context.Context, actor model.Actor, workspaceID uint, entity string) error {
	role, ok, err := g.members.Role(ctx, actor.UserID, workspaceID)
	if err != nil {
		return err
	}
	if actor.Operator {
		return nil
	}
	if !ok {
		return errs.NotFound("%s not found", entity)
	}
	if role != model.WorkspaceRoleAdmin {
		return errs.Forbidden("Only workspace admins can do this")
	}
	return nil
}

// Me returns the caller's user record.
func (g *Gateway) Me(ctx context.Context, actor model.Actor) (*model.User, error) {
	var u model.User
	if err := g.db.WithContext(ctx).First(&u, actor.UserID).Error; err != nil {
		return nil, errs.FromStore(err, "User")
	}
	return &u, nil
}
