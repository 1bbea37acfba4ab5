package collab

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

type fixture struct {
	db                  *gorm.DB
	svc                 *Service
	op, bob, carol, eve *model.User
	task                *model.Task
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{db: db, svc: NewService(db)}
	f.op = testutil.SeedUser(t, db, "op", true)
	f.bob = testutil.SeedUser(t, db, "bob", false)
	f.carol = testutil.SeedUser(t, db, "carol", false)
	f.eve = testutil.SeedUser(t, db, "eve", false)
	ws := testutil.SeedWorkspace(t, db, "Acme", f.op)
	testutil.SeedMember(t, db, ws, f.bob, model.WorkspaceRoleMember)
	testutil.SeedMember(t, db, ws, f.carol, model.WorkspaceRoleMember)
	p := testutil.SeedProject(t, db, ws, "Core")
	_, lists := testutil.SeedBoard(t, db, p, "Main", testutil.DefaultColumns...)
	f.task = testutil.SeedTask(t, db, lists[0], "Fix bug", model.TaskStatusTodo)
	return f
}

func countActions(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.ActivityLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Assign(ctx, model.ActorOf(f.bob), f.task.ID, f.carol.ID)
	require.NoError(t, err)
	assert.Equal(t, f.task.ID, a.TaskID)
	assert.Equal(t, f.carol.ID, a.UserID)
	assert.Equal(t, int64(1), countActions(t, f.db, "assigned user"))

	_, err = f.svc.Assign(ctx, model.ActorOf(f.bob), f.task.ID, f.carol.ID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))

	var n int64
	require.NoError(t, f.db.Model(&model.TaskAssignee{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), countActions(t, f.db, "assigned user"))
}

func TestAssign_TargetNotMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Assign(context.Background(), model.ActorOf(f.bob), f.task.ID, f.eve.ID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	assert.Equal(t, "User is not a workspace member", errs.Message(err))
	assert.Zero(t, countActions(t, f.db, "assigned user"))
}

func TestAssign_ActorNotMember(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Assign(context.Background(), model.ActorOf(f.eve), f.task.ID, f.bob.ID)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.svc.Assign(ctx, model.ActorOf(f.bob), f.task.ID, f.carol.ID)
	require.NoError(t, err)

	err = f.svc.Unassign(ctx, model.ActorOf(f.eve), a.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	require.NoError(t, f.svc.Unassign(ctx, model.ActorOf(f.carol), a.ID))
	list, err := f.svc.ListAssignees(ctx, model.ActorOf(f.bob), f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(1), countActions(t, f.db, "unassigned user"))
}

func TestListAssignees_Scoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Assign(ctx, model.ActorOf(f.bob), f.task.ID, f.bob.ID)
	require.NoError(t, err)

	list, err := f.svc.ListAssignees(ctx, model.ActorOf(f.carol), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.ListAssignees(ctx, model.ActorOf(f.eve), f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddComment(ctx, model.ActorOf(f.bob), f.task.ID, "  looks good  ")
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, c.UserID, "author is always the caller")
	assert.Equal(t, "bob", c.User)
	assert.Equal(t, "looks good", c.Message)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, int64(1), countActions(t, f.db, "commented on task"))

	_, err = f.svc.AddComment(ctx, model.ActorOf(f.bob), f.task.ID, "looks good")
	require.NoError(t, err, "comments are not deduplicated")

	comments, err := f.svc.ListComments(ctx, model.ActorOf(f.carol), f.task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "bob", comments[0].User)

	comments, err = f.svc.ListComments(ctx, model.ActorOf(f.eve), f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAddComment_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, model.ActorOf(f.eve), f.task.ID, "hi")
	assert.True(t, errs.Is(err, errs.KindForbidden))

	_, err = f.svc.AddComment(ctx, model.ActorOf(f.bob), f.task.ID, "   ")
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = f.svc.AddComment(ctx, model.ActorOf(f.bob), 999, "hi")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.AddComment(ctx, model.ActorOf(f.bob), f.task.ID, "first draft")
	require.NoError(t, err)

	got, err := f.svc.UpdateComment(ctx, model.ActorOf(f.bob), c.ID, " final ")
	require.NoError(t, err)
	assert.Equal(t, "final", got.Message)
	assert.Equal(t, f.bob.ID, got.UserID)
	assert.Equal(t, f.task.ID, got.TaskID)
	assert.Equal(t, int64(1), countActions(t, f.db, "edited comment"))

	_, err = f.svc.UpdateComment(ctx, model.ActorOf(f.carol), c.ID, "hijack")
	assert.True(t, errs.Is(err, errs.KindForbidden))
	_, err = f.svc.UpdateComment(ctx, model.ActorOf(f.op), c.ID, "hijack")
	assert.True(t, errs.Is(err, errs.KindForbidden), "operators do not edit other people's comments")
	_, err = f.svc.UpdateComment(ctx, model.ActorOf(f.eve), c.ID, "hijack")
	assert.True(t, errs.Is(err, errs.KindNotFound))
	_, err = f.svc.UpdateComment(ctx, model.ActorOf(f.bob), c.ID, "  ")
	assert.True(t, errs.Is(err, errs.KindValidation))

	var stored model.Comment
	require.NoError(t, f.db.First(&stored, c.ID).Error)
	assert.Equal(t, "final", stored.Message)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.AddComment(ctx, model.ActorOf(f.bob), f.task.ID, "oops")
	require.NoError(t, err)

	err = f.svc.DeleteComment(ctx, model.ActorOf(f.carol), c.ID)
	assert.True(t, errs.Is(err, errs.KindForbidden))
	err = f.svc.DeleteComment(ctx, model.ActorOf(f.eve), c.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	require.NoError(t, f.svc.DeleteComment(ctx, model.ActorOf(f.bob), c.ID))
	comments, err := f.svc.ListComments(ctx, model.ActorOf(f.bob), f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Equal(t, int64(1), countActions(t, f.db, "deleted comment"))

	err = f.svc.DeleteComment(ctx, model.ActorOf(f.bob), c.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
