package membership

import (
	"taskboard/dao/model"

	"gorm.io/gorm"
)

// The helpers below build subqueries selecting the ids a user may see at each
// level of the hierarchy. They render into the outer statement and never run alone.

func fresh(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true})
}

func WorkspaceIDs(db *gorm.DB, userID uint) *gorm.DB {
	return fresh(db).Model(&model.WorkspaceMember{}).Select("workspace_id").Where("user_id = ?", userID)
}

func ProjectIDs(db *gorm.DB, userID uint) *gorm.DB {
	return fresh(db).Model(&model.Project{}).Select("id").Where("workspace_id IN (?)", WorkspaceIDs(db, userID))
}

func BoardIDs(db *gorm.DB, userID uint) *gorm.DB {
	return fresh(db).Model(&model.Board{}).Select("id").Where("project_id IN (?)", ProjectIDs(db, userID))
}

func TaskListIDs(db *gorm.DB, userID uint) *gorm.DB {
	return fresh(db).Model(&model.TaskList{}).Select("id").Where("board_id IN (?)", BoardIDs(db, userID))
}

func TaskIDs(db *gorm.DB, userID uint) *gorm.DB {
	return fresh(db).Model(&model.Task{}).Select("id").Where("task_list_id IN (?)", TaskListIDs(db, userID))
}
