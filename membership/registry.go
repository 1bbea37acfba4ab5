// Package membership tracks which users belong to which workspaces and with what role.
package membership

import (
	"context"
	"errors"
	"strings"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"

	"gorm.io/gorm"
)

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// WithTx returns a Registry bound to tx.
func (r *Registry) WithTx(tx *gorm.DB) *Registry {
	return &Registry{db: tx}
}

func (r *Registry) IsMember(ctx context.Context, userID, workspaceID uint) (bool, error) {
	_, ok, err := r.Role(ctx, userID, workspaceID)
	return ok, err
}

// Role returns the user's role in the workspace; ok is false for non-members.
func (r *Registry) Role(ctx context.Context, userID, workspaceID uint) (model.WorkspaceRole, bool, error) {
	var m model.WorkspaceMember
	err := r.db.WithContext(ctx).
		Select("role").
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Internal("load membership", err)
	}
	return m.Role, true, nil
}

// RequireMember fails with NotFound when the user is not enrolled, so callers
// never learn whether an out-of-scope workspace exists.
func (r *Registry) RequireMember(ctx context.Context, userID, workspaceID uint, entity string) error {
	ok, err := r.IsMember(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("%s not found", entity)
	}
	return nil
}

// Enroll inserts a membership row. A duplicate pair surfaces as Conflict.
func (r *Registry) Enroll(ctx context.Context, workspaceID, userID uint, role model.WorkspaceRole) (*model.WorkspaceMember, error) {
	m := &model.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errs.IsUniqueViolation(err) {
			return nil, errs.Conflict("User already added to this workspace")
		}
		return nil, errs.Internal("enroll member", err)
	}
	return m, nil
}

// FindUserByEmail matches case-insensitively. More than one match is a Conflict.
func (r *Registry) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", email).
		Limit(2).
		Find(&users).Error
	if err != nil {
		return nil, errs.Internal("find user by email", err)
	}
	switch len(users) {
	case 0:
		return nil, errs.NotFound("User with this email does not exist")
	case 1:
		return &users[0], nil
	default:
		return nil, errs.Conflict("More than one account uses this email")
	}
}

// AddMember enrolls the user owning email as a MEMBER of the workspace.
// Only the workspace owner or a site operator may add members.
func (r *Registry) AddMember(ctx context.Context, actor model.Actor, workspaceID uint, email string) (*model.User, *model.WorkspaceMember, error) {
	if workspaceID == 0 || strings.TrimSpace(email) == "" {
		return nil, nil, errs.Validation("workspace and email are required")
	}

	var (
		user   *model.User
		member *model.WorkspaceMember
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg := r.WithTx(tx)

		var ws model.Workspace
		if err := tx.First(&ws, workspaceID).Error; err != nil {
			return errs.FromStore(err, "Workspace")
		}
		if ws.OwnerID != actor.UserID && !actor.Operator {
			if err := reg.RequireMember(ctx, actor.UserID, ws.ID, "Workspace"); err != nil {
				return err
			}
			return errs.Forbidden("Only workspace owner can add members")
		}

		var err error
		if user, err = reg.FindUserByEmail(ctx, email); err != nil {
			return err
		}
		if ok, err := reg.IsMember(ctx, user.ID, ws.ID); err != nil {
			return err
		} else if ok {
			return errs.Conflict("User already added to this workspace")
		}
		if member, err = reg.Enroll(ctx, ws.ID, user.ID, model.WorkspaceRoleMember); err != nil {
			return err
		}
		activity.Record(tx, actor.UserID, ws.ID, activity.AddedMember, model.EntityWorkspace, ws.ID)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, member, nil
}

// ListMembers returns the workspace's members with their users, or an empty
// list when the caller is not a member.
func (r *Registry) ListMembers(ctx context.Context, actor model.Actor, workspaceID uint) ([]model.WorkspaceMember, error) {
	members := []model.WorkspaceMember{}
	if workspaceID == 0 {
		return members, nil
	}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ? AND workspace_id IN (?)", workspaceID, WorkspaceIDs(r.db, actor.UserID)).
		Order("joined_at, id").
		Find(&members).Error
	if err != nil {
		return nil, errs.Internal("list members", err)
	}
	return members, nil
}
