package service

import (
	"fmt"
	"net/http"
	"testing"

	"taskboard/activity"
	"taskboard/gateway"
	"taskboard/response"
	"taskboard/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardFlow(t *testing.T) {
	ts := newTestServer(t)
	opToken, _ := ts.tokensFor(testutil.SeedUser(t, ts.db, "op", true))
	bob := testutil.SeedUser(t, ts.db, "bob", false)
	bobToken, _ := ts.tokensFor(bob)
	eve := testutil.SeedUser(t, ts.db, "eve", false)
	eveToken, _ := ts.tokensFor(eve)

	// containers are created by the operator
	var ws gateway.WorkspaceView
	w := ts.do(http.MethodPost, "/api/workspaces", opToken, gin.H{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &ws)
	assert.Equal(t, "ADMIN", string(ws.Role))

	w = ts.do(http.MethodPost, "/api/workspaces", bobToken, gin.H{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.Forbidden, decode(t, w, nil).Code)

	var project struct {
		ID uint `json:"id"`
	}
	w = ts.do(http.MethodPost, "/api/projects", opToken, gin.H{"name": "Core", "workspace": ws.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &project)

	var board gateway.BoardView
	w = ts.do(http.MethodPost, "/api/boards", opToken, gin.H{"name": "Main", "project": project.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &board)
	require.Len(t, board.TaskLists, 4)

	// membership
	w = ts.do(http.MethodPost, "/api/add-workspace-member", opToken, gin.H{"workspace": ws.ID, "email": " BOB@example.com "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w, nil)
	assert.JSONEq(t, fmt.Sprintf(`{"message":"User added successfully","user":{"id":%d,"email":"bob@example.com","username":"bob"}}`, bob.ID), string(body.Data))

	w = ts.do(http.MethodPost, "/api/add-workspace-member", opToken, gin.H{"workspace": ws.ID, "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.Conflict, decode(t, w, nil).Code)

	w = ts.do(http.MethodPost, "/api/add-workspace-member", opToken, gin.H{"workspace": ws.ID, "email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodPost, "/api/add-workspace-member", opToken, gin.H{"email": "eve@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(http.MethodPost, "/api/add-workspace-member", bobToken, gin.H{"workspace": ws.ID, "email": "eve@example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// tasks follow their status
	var task gateway.TaskView
	w = ts.do(http.MethodPost, "/api/tasks", bobToken, gin.H{"title": "Fix bug", "status": "TODO"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &task)
	assert.Equal(t, board.TaskLists[0].ID, task.TaskList)
	assert.Equal(t, ws.ID, task.Workspace)
	assert.Equal(t, project.ID, task.Team)

	w = ts.do(http.MethodPost, "/api/tasks", bobToken, gin.H{"title": "Nope", "status": "BLOCKED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.InvalidRequest, decode(t, w, nil).Code)

	w = ts.do(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), bobToken, gin.H{"status": "DONE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &task)
	assert.Equal(t, board.TaskLists[3].ID, task.TaskList)
	assert.Equal(t, "DONE", string(task.Status))

	// outsiders see nothing
	w = ts.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), eveToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.NotFound, decode(t, w, nil).Code)

	var tasks []gateway.TaskView
	w = ts.do(http.MethodGet, fmt.Sprintf("/api/tasks?board=%d", board.ID), eveToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tasks)
	assert.Empty(t, tasks)

	w = ts.do(http.MethodGet, fmt.Sprintf("/api/tasks?board=%d&status=DONE", board.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &tasks)
	assert.Len(t, tasks, 1)

	// collaboration
	w = ts.do(http.MethodPost, "/api/task-assignees", bobToken, gin.H{"task": task.ID, "user": eve.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodPost, "/api/task-assignees", bobToken, gin.H{"task": task.ID, "user": bob.ID})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(http.MethodPost, "/api/task-assignees", bobToken, gin.H{"task": task.ID, "user": bob.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.Conflict, decode(t, w, nil).Code)

	w = ts.do(http.MethodPost, "/api/comments", eveToken, gin.H{"task": task.ID, "message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodPost, "/api/comments", bobToken, gin.H{"task": task.ID, "message": "done"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var entries []activity.Entry
	w = ts.do(http.MethodGet, "/api/activity", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &entries)
	require.NotEmpty(t, entries)
	assert.Equal(t, "commented on task", entries[0].Action)

	w = ts.do(http.MethodGet, "/api/activity", eveToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &entries)
	assert.Empty(t, entries)

	w = ts.do(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadEndpoints(t *testing.T) {
	ts := newTestServer(t)
	op := testutil.SeedUser(t, ts.db, "op", true)
	opToken, _ := ts.tokensFor(op)
	bob := testutil.SeedUser(t, ts.db, "bob", false)
	bobToken, _ := ts.tokensFor(bob)
	eveToken, _ := ts.tokensFor(testutil.SeedUser(t, ts.db, "eve", false))

	ws := testutil.SeedWorkspace(t, ts.db, "Acme", op)
	testutil.SeedMember(t, ts.db, ws, bob, "MEMBER")
	p := testutil.SeedProject(t, ts.db, ws, "Core")
	b, _ := testutil.SeedBoard(t, ts.db, p, "Main", testutil.DefaultColumns...)

	paths := []string{
		fmt.Sprintf("/api/workspaces/%d", ws.ID),
		fmt.Sprintf("/api/projects/%d", p.ID),
		fmt.Sprintf("/api/boards/%d", b.ID),
	}
	for _, path := range paths {
		assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, path, bobToken, nil).Code, path)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path, eveToken, nil).Code, path)
	}

	lists := []string{
		"/api/workspaces",
		fmt.Sprintf("/api/projects?workspace=%d", ws.ID),
		fmt.Sprintf("/api/boards?project=%d", p.ID),
		fmt.Sprintf("/api/task-lists?board=%d", b.ID),
		fmt.Sprintf("/api/workspace-members?workspace=%d", ws.ID),
		fmt.Sprintf("/api/users?workspace=%d", ws.ID),
		fmt.Sprintf("/api/sprints?board=%d", b.ID),
		"/api/task-assignees",
		"/api/comments",
	}
	for _, path := range lists {
		var items []map[string]any
		w := ts.do(http.MethodGet, path, eveToken, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		decode(t, w, &items)
		assert.Empty(t, items, path)
	}

	var members []memberResp
	w := ts.do(http.MethodGet, fmt.Sprintf("/api/workspace-members?workspace=%d", ws.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &members)
	require.Len(t, members, 2)
	assert.Equal(t, "op", members[0].User.Username)

	var found []userResp
	w = ts.do(http.MethodGet, fmt.Sprintf("/api/users/search?q=eve&workspace=%d", ws.ID), opToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "eve", found[0].Username)

	w = ts.do(http.MethodPost, "/api/sprints", opToken, gin.H{"board": b.ID, "name": "S1", "start_date": "2024-01-01", "end_date": "2024-01-14"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sprint map[string]any
	decode(t, w, &sprint)
	assert.Equal(t, "2024-01-01", sprint["start_date"])
}

func TestColumnAndCommentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	op := testutil.SeedUser(t, ts.db, "op", true)
	bob := testutil.SeedUser(t, ts.db, "bob", false)
	bobToken, _ := ts.tokensFor(bob)
	carol := testutil.SeedUser(t, ts.db, "carol", false)
	carolToken, _ := ts.tokensFor(carol)
	eveToken, _ := ts.tokensFor(testutil.SeedUser(t, ts.db, "eve", false))

	ws := testutil.SeedWorkspace(t, ts.db, "Acme", op)
	testutil.SeedMember(t, ts.db, ws, bob, "MEMBER")
	testutil.SeedMember(t, ts.db, ws, carol, "MEMBER")
	p := testutil.SeedProject(t, ts.db, ws, "Core")
	b, lists := testutil.SeedBoard(t, ts.db, p, "Main", testutil.DefaultColumns...)

	var column struct {
		ID       uint   `json:"id"`
		Title    string `json:"title"`
		Position int    `json:"position"`
	}
	w := ts.do(http.MethodPost, "/api/task-lists", bobToken, gin.H{"board": b.ID, "title": "Blocked"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &column)
	assert.Equal(t, 5, column.Position)

	w = ts.do(http.MethodPost, "/api/task-lists", eveToken, gin.H{"board": b.ID, "title": "Mine"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPatch, fmt.Sprintf("/api/task-lists/%d", column.ID), bobToken, gin.H{"title": "On Hold", "position": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &column)
	assert.Equal(t, "On Hold", column.Title)
	assert.Equal(t, 2, column.Position)

	w = ts.do(http.MethodDelete, fmt.Sprintf("/api/task-lists/%d", column.ID), eveToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodDelete, fmt.Sprintf("/api/task-lists/%d", column.ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var task gateway.TaskView
	w = ts.do(http.MethodPost, "/api/tasks", bobToken, gin.H{"title": "Fix bug", "status": "todo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &task)
	assert.Equal(t, lists[0].ID, task.TaskList)

	w = ts.do(http.MethodDelete, fmt.Sprintf("/api/task-lists/%d", lists[0].ID), bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.Conflict, decode(t, w, nil).Code)

	var comment struct {
		ID      uint   `json:"id"`
		Message string `json:"message"`
		User    string `json:"user"`
	}
	w = ts.do(http.MethodPost, "/api/comments", bobToken, gin.H{"task": task.ID, "message": "draft"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &comment)

	path := fmt.Sprintf("/api/comments/%d", comment.ID)
	w = ts.do(http.MethodPatch, path, carolToken, gin.H{"message": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodPatch, path, bobToken, gin.H{"message": "final"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &comment)
	assert.Equal(t, "final", comment.Message)
	assert.Equal(t, "bob", comment.User)

	w = ts.do(http.MethodDelete, path, carolToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
