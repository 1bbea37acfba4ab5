// Package migrate owns the schema. Fresh databases get the full schema through
// InitSchema; existing ones are moved forward by the versioned migrations.
package migrate

import (
	"fmt"

	"taskboard/dao/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// AllModels lists every table in dependency order.
func AllModels() []any {
	return []any{
		&model.User{},
		&model.Workspace{},
		&model.WorkspaceMember{},
		&model.Project{},
		&model.Board{},
		&model.TaskList{},
		&model.Sprint{},
		&model.Task{},
		&model.TaskAssignee{},
		&model.Comment{},
		&model.ActivityLog{},
	}
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// emails are matched case-insensitively; store them normalized
			ID: "202410180001",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("UPDATE users SET email = LOWER(TRIM(email))").Error
			},
			Rollback: func(_ *gorm.DB) error {
				return nil
			},
		},
		{
			// sprints arrived after the first release
			ID: "202410180002",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&model.Sprint{}); err != nil {
					return err
				}
				if tx.Migrator().HasColumn(&model.Task{}, "sprint_id") {
					return nil
				}
				return tx.Migrator().AddColumn(&model.Task{}, "SprintID")
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Migrator().DropColumn(&model.Task{}, "SprintID"); err != nil {
					return err
				}
				return tx.Migrator().DropTable(&model.Sprint{})
			},
		},
		{
			// activity is scoped by workspace; backfill from the entity where it still exists
			ID: "202410180003",
			Migrate: func(tx *gorm.DB) error {
				if !tx.Migrator().HasColumn(&model.ActivityLog{}, "workspace_id") {
					if err := tx.Migrator().AddColumn(&model.ActivityLog{}, "WorkspaceID"); err != nil {
						return err
					}
				}
				for _, stmt := range activityBackfill {
					if err := tx.Exec(stmt).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&model.ActivityLog{}, "WorkspaceID")
			},
		},
	}
}

var activityBackfill = []string{
	`UPDATE activity_log SET workspace_id = entity_id WHERE entity_type = 'Workspace'`,
	`UPDATE activity_log SET workspace_id = COALESCE((SELECT p.workspace_id FROM project p
		WHERE p.id = activity_log.entity_id), 0) WHERE entity_type = 'Project'`,
	`UPDATE activity_log SET workspace_id = COALESCE((SELECT p.workspace_id FROM board b
		JOIN project p ON p.id = b.project_id WHERE b.id = activity_log.entity_id), 0) WHERE entity_type = 'Board'`,
	`UPDATE activity_log SET workspace_id = COALESCE((SELECT p.workspace_id FROM sprint s
		JOIN board b ON b.id = s.board_id JOIN project p ON p.id = b.project_id
		WHERE s.id = activity_log.entity_id), 0) WHERE entity_type = 'Sprint'`,
	`UPDATE activity_log SET workspace_id = COALESCE((SELECT p.workspace_id FROM task t
		JOIN task_list l ON l.id = t.task_list_id JOIN board b ON b.id = l.board_id
		JOIN project p ON p.id = b.project_id WHERE t.id = activity_log.entity_id), 0) WHERE entity_type = 'Task'`,
}

// Run brings the schema of db up to date.
func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	m.InitSchema(func(tx *gorm.DB) error {
		return tx.AutoMigrate(AllModels()...)
	})
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("could not migrate: %w", err)
	}
	return nil
}
