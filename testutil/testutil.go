// Package testutil provides an in-memory store and fixtures for tests.
package testutil

import (
	"strings"
	"testing"

	"taskboard/dao/migrate"
	"taskboard/dao/model"
	"taskboard/dao/query"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory sqlite database. The pool is capped at
// one connection because every connection to :memory: sees its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := query.Open(sqlite.Open("file::memory:?_foreign_keys=on"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.Run(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// SeedUser inserts an active user. Operators get the site-operator role.
func SeedUser(t *testing.T, db *gorm.DB, username string, operator bool) *model.User {
	t.Helper()
	u := &model.User{
		Username:   username,
		Email:      strings.ToLower(username) + "@example.com",
		Role:       model.RoleUser,
		Status:     model.StatusActive,
		Attributes: datatypes.NewJSONType(model.UserAttribute{Nickname: username}),
	}
	if operator {
		u.Role = model.RoleOperator
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// SeedWorkspace creates a workspace owned by owner with owner enrolled as ADMIN.
func SeedWorkspace(t *testing.T, db *gorm.DB, name string, owner *model.User) *model.Workspace {
	t.Helper()
	ws := &model.Workspace{Name: name, OwnerID: owner.ID}
	if err := db.Create(ws).Error; err != nil {
		t.Fatalf("seed workspace %s: %v", name, err)
	}
	SeedMember(t, db, ws, owner, model.WorkspaceRoleAdmin)
	return ws
}

func SeedMember(t *testing.T, db *gorm.DB, ws *model.Workspace, u *model.User, role model.WorkspaceRole) *model.WorkspaceMember {
	t.Helper()
	m := &model.WorkspaceMember{WorkspaceID: ws.ID, UserID: u.ID, Role: role}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("seed member %s: %v", u.Username, err)
	}
	return m
}

func SeedProject(t *testing.T, db *gorm.DB, ws *model.Workspace, name string) *model.Project {
	t.Helper()
	p := &model.Project{Name: name, WorkspaceID: ws.ID}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return p
}

// SeedBoard creates a board with the given column titles at positions 1..n.
func SeedBoard(t *testing.T, db *gorm.DB, p *model.Project, name string, columns ...string) (*model.Board, []model.TaskList) {
	t.Helper()
	b := &model.Board{Name: name, ProjectID: p.ID}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed board %s: %v", name, err)
	}
	lists := make([]model.TaskList, 0, len(columns))
	for i, title := range columns {
		lists = append(lists, model.TaskList{BoardID: b.ID, Title: title, Position: i + 1})
	}
	if len(lists) > 0 {
		if err := db.Create(&lists).Error; err != nil {
			t.Fatalf("seed columns for %s: %v", name, err)
		}
	}
	return b, lists
}

// SeedTask inserts a task directly into list with the given status.
func SeedTask(t *testing.T, db *gorm.DB, list model.TaskList, title string, status model.TaskStatus) *model.Task {
	t.Helper()
	task := &model.Task{
		Title:      title,
		WorkType:   model.WorkTypeTask,
		Status:     status,
		Priority:   model.PriorityMedium,
		TaskListID: list.ID,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return task
}

// DefaultColumns mirrors the columns a new board is provisioned with.
var DefaultColumns = []string{"To Do", "In Progress", "In Review", "Done"}
