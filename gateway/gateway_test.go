package gateway

import (
	"context"
	"testing"

	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture is one workspace built through the gateway: op owns it, bob is a
// MEMBER, eve belongs nowhere.
type fixture struct {
	ctx          context.Context
	db           *gorm.DB
	gw           *Gateway
	op, bob, eve *model.User
	ws           *WorkspaceView
	project      *model.Project
	board        *BoardView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{ctx: context.Background(), db: db, gw: New(db)}
	f.op = testutil.SeedUser(t, db, "op", true)
	f.bob = testutil.SeedUser(t, db, "bob", false)
	f.eve = testutil.SeedUser(t, db, "eve", false)

	var err error
	f.ws, err = f.gw.CreateWorkspace(f.ctx, f.actor(f.op), "Acme")
	require.NoError(t, err)
	_, _, err = f.gw.AddMember(f.ctx, f.actor(f.op), f.ws.ID, "bob@example.com")
	require.NoError(t, err)
	f.project, err = f.gw.CreateProject(f.ctx, f.actor(f.op), "Core", f.ws.ID)
	require.NoError(t, err)
	f.board, err = f.gw.CreateBoard(f.ctx, f.actor(f.op), "Main", f.project.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) actor(u *model.User) model.Actor {
	return model.ActorOf(u)
}

// column returns the board's column with the given title.
func (f *fixture) column(t *testing.T, title string) model.TaskList {
	t.Helper()
	for _, l := range f.board.TaskLists {
		if l.Title == title {
			return l
		}
	}
	t.Fatalf("no column %q", title)
	return model.TaskList{}
}

func countRows(t *testing.T, db *gorm.DB, m any, where ...any) int64 {
	t.Helper()
	q := db.Model(m)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestCreateWorkspace(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, model.WorkspaceRoleAdmin, f.ws.Role)
	assert.True(t, f.ws.IsAdmin)
	assert.Equal(t, f.op.ID, f.ws.OwnerID)

	var m model.WorkspaceMember
	require.NoError(t, f.db.Where("workspace_id = ? AND user_id = ?", f.ws.ID, f.op.ID).Take(&m).Error)
	assert.Equal(t, model.WorkspaceRoleAdmin, m.Role)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.ActivityLog{}, "action = ? AND entity_id = ?", "created workspace", f.ws.ID))
}

func TestCreateWorkspace_Denied(t *testing.T) {
	f := newFixture(t)

	_, err := f.gw.CreateWorkspace(f.ctx, f.actor(f.bob), "Side")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	assert.Equal(t, "Only admins can create workspaces", errs.Message(err))

	_, err = f.gw.CreateWorkspace(f.ctx, f.actor(f.op), "  ")
	assert.True(t, errs.Is(err, errs.KindValidation))
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Workspace{}))
}

func TestListWorkspaces(t *testing.T) {
	f := newFixture(t)

	got, err := f.gw.ListWorkspaces(f.ctx, f.actor(f.bob))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].Name)
	assert.Equal(t, model.WorkspaceRoleMember, got[0].Role)
	assert.False(t, got[0].IsAdmin)

	got, err = f.gw.ListWorkspaces(f.ctx, f.actor(f.eve))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetWorkspace_HiddenFromOutsiders(t *testing.T) {
	f := newFixture(t)

	ws, err := f.gw.GetWorkspace(f.ctx, f.actor(f.bob), f.ws.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ws.ID, ws.ID)

	_, err = f.gw.GetWorkspace(f.ctx, f.actor(f.eve), f.ws.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = f.gw.GetWorkspace(f.ctx, f.actor(f.bob), 999)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestAddMember_Twice(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "carol", false)

	_, _, err := f.gw.AddMember(f.ctx, f.actor(f.op), f.ws.ID, "Carol@Example.com")
	require.NoError(t, err)
	_, _, err = f.gw.AddMember(f.ctx, f.actor(f.op), f.ws.ID, "carol@example.com")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))
	assert.Equal(t, "User already added to this workspace", errs.Message(err))
	assert.Equal(t, int64(3), countRows(t, f.db, &model.WorkspaceMember{}, "workspace_id = ?", f.ws.ID))
}

func TestListMembers(t *testing.T) {
	f := newFixture(t)

	members, err := f.gw.ListMembers(f.ctx, f.actor(f.bob), f.ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "op", members[0].User.Username)
	assert.Equal(t, "bob", members[1].User.Username)

	members, err = f.gw.ListMembers(f.ctx, f.actor(f.eve), f.ws.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListWorkspaceUsers(t *testing.T) {
	f := newFixture(t)

	users, err := f.gw.ListWorkspaceUsers(f.ctx, f.actor(f.bob), f.ws.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob@example.com", users[0].Email)
	assert.Equal(t, "op@example.com", users[1].Email)

	users, err = f.gw.ListWorkspaceUsers(f.ctx, f.actor(f.eve), f.ws.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "bobby", false)

	users, err := f.gw.SearchUsers(f.ctx, f.actor(f.op), "BOB", f.ws.ID)
	require.NoError(t, err)
	require.Len(t, users, 1, "existing members are left out")
	assert.Equal(t, "bobby", users[0].Username)

	users, err = f.gw.SearchUsers(f.ctx, f.actor(f.op), "bob", 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = f.gw.SearchUsers(f.ctx, f.actor(f.bob), "bob", f.ws.ID)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	_, err = f.gw.SearchUsers(f.ctx, f.actor(f.eve), "bob", f.ws.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = f.gw.SearchUsers(f.ctx, f.actor(f.bob), "bob", 0)
	assert.True(t, errs.Is(err, errs.KindForbidden))
}

func TestSearchUsers_Limit(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6"} {
		testutil.SeedUser(t, f.db, name, false)
	}

	users, err := f.gw.SearchUsers(f.ctx, f.actor(f.op), "u", 0)
	require.NoError(t, err)
	assert.Len(t, users, searchLimit)
}

func TestSearchUsers_LiteralWildcards(t *testing.T) {
	f := newFixture(t)
	testutil.SeedUser(t, f.db, "john_doe", false)
	testutil.SeedUser(t, f.db, "johnxdoe", false)
	testutil.SeedUser(t, f.db, "100%sure", false)
	testutil.SeedUser(t, f.db, "100xsure", false)

	users, err := f.gw.SearchUsers(f.ctx, f.actor(f.op), "john_doe", 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "john_doe@example.com", users[0].Email)

	users, err = f.gw.SearchUsers(f.ctx, f.actor(f.op), "100%", f.ws.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "100%sure", users[0].Username)

	users, err = f.gw.SearchUsers(f.ctx, f.actor(f.op), "!", 0)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	u, err := f.gw.Me(f.ctx, f.actor(f.bob))
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)

	_, err = f.gw.Me(f.ctx, model.Actor{UserID: 999})
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
