package gateway

import (
	"context"
	"strings"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/membership"
)

// WorkspaceView adds the caller's perspective to a workspace.
type WorkspaceView struct {
	model.Workspace
	Role    model.WorkspaceRole `json:"role"`
	IsAdmin bool                `json:"is_admin"`
}

// CreateWorkspace creates a workspace owned by the actor and enrolls the actor as ADMIN.
func (g *Gateway) CreateWorkspace(ctx context.Context, actor model.Actor, name string) (*WorkspaceView, error) {
	if err := requireOperator(actor, "workspaces"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	ws := &model.Workspace{Name: name, OwnerID: actor.UserID}
	err := g.transaction(ctx, func(tg *Gateway) error {
		if err := tg.db.Create(ws).Error; err != nil {
			return errs.Internal("create workspace", err)
		}
		if _, err := tg.members.Enroll(ctx, ws.ID, actor.UserID, model.WorkspaceRoleAdmin); err != nil {
			return err
		}
		activity.Record(tg.db, actor.UserID, ws.ID, activity.CreatedWorkspace, model.EntityWorkspace, ws.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &WorkspaceView{Workspace: *ws, Role: model.WorkspaceRoleAdmin, IsAdmin: actor.Operator}, nil
}

// ListWorkspaces returns the workspaces the actor belongs to.
func (g *Gateway) ListWorkspaces(ctx context.Context, actor model.Actor) ([]WorkspaceView, error) {
	var members []model.WorkspaceMember
	err := g.db.WithContext(ctx).
		Preload("Workspace").
		Where("user_id = ?", actor.UserID).
		Order("workspace_id").
		Find(&members).Error
	if err != nil {
		return nil, errs.Internal("list workspaces", err)
	}
	out := make([]WorkspaceView, 0, len(members))
	for _, m := range members {
		out = append(out, WorkspaceView{Workspace: m.Workspace, Role: m.Role, IsAdmin: actor.Operator})
	}
	return out, nil
}

func (g *Gateway) GetWorkspace(ctx context.Context, actor model.Actor, id uint) (*WorkspaceView, error) {
	role, ok, err := g.members.Role(ctx, actor.UserID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.NotFound("Workspace not found")
	}
	var ws model.Workspace
	if err := g.db.WithContext(ctx).First(&ws, id).Error; err != nil {
		return nil, errs.FromStore(err, "Workspace")
	}
	return &WorkspaceView{Workspace: ws, Role: role, IsAdmin: actor.Operator}, nil
}

func (g *Gateway) AddMember(ctx context.Context, actor model.Actor, workspaceID uint, email string) (*model.User, *model.WorkspaceMember, error) {
	return g.members.AddMember(ctx, actor, workspaceID, email)
}

func (g *Gateway) ListMembers(ctx context.Context, actor model.Actor, workspaceID uint) ([]model.WorkspaceMember, error) {
	return g.members.ListMembers(ctx, actor, workspaceID)
}

// ListWorkspaceUsers returns the users of a workspace the actor belongs to, by email.
func (g *Gateway) ListWorkspaceUsers(ctx context.Context, actor model.Actor, workspaceID uint) ([]model.User, error) {
	users := []model.User{}
	if workspaceID == 0 {
		return users, nil
	}
	memberIDs := fresh(g.db).Model(&model.WorkspaceMember{}).Select("user_id").Where("workspace_id = ?", workspaceID)
	err := g.db.WithContext(ctx).
		Where("id IN (?)", memberIDs).
		Where("? IN (?)", workspaceID, membership.WorkspaceIDs(g.db, actor.UserID)).
		Order("email").
		Find(&users).Error
	if err != nil {
		return nil, errs.Internal("list workspace users", err)
	}
	return users, nil
}

const searchLimit = 5

// SearchUsers finds users by email substring for invitations. When a workspace
// is given, users already enrolled there are left out. Only people who may
// invite (operators and workspace admins) can search.
func (g *Gateway) SearchUsers(ctx context.Context, actor model.Actor, q string, workspaceID uint) ([]model.User, error) {
	if workspaceID != 0 {
		if err := g.requireWorkspaceAdmin(ctx, actor, workspaceID, "Workspace"); err != nil {
			return nil, err
		}
	} else if !actor.Operator {
		return nil, errs.Forbidden("Only admins can search users")
	}
	users := []model.User{}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users, nil
	}
	query := g.db.WithContext(ctx).Where("LOWER(email) LIKE ? ESCAPE '!'", "%"+escapeLike(q)+"%")
	if workspaceID != 0 {
		enrolled := fresh(g.db).Model(&model.WorkspaceMember{}).Select("user_id").Where("workspace_id = ?", workspaceID)
		query = query.Where("id NOT IN (?)", enrolled)
	}
	if err := query.Order("email").Limit(searchLimit).Find(&users).Error; err != nil {
		return nil, errs.Internal("search users", err)
	}
	return users, nil
}

// escapeLike quotes LIKE wildcards in s using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}
