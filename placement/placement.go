// Package placement keeps a task's status and its column in agreement.
//
// Every status maps to exactly one column title. Creating a task picks the
// column for its status; changing the status moves the task to the matching
// column on the same board. Positions are left to the caller.
package placement

import (
	"context"
	"fmt"
	"strings"

	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/membership"

	"gorm.io/gorm"
)

// Column is a default column a board is provisioned with.
type Column struct {
	Title    string
	Position int
	Status   model.TaskStatus
}

// DefaultColumns are created with every board, in display order.
var DefaultColumns = []Column{
	{Title: "To Do", Position: 1, Status: model.TaskStatusTodo},
	{Title: "In Progress", Position: 2, Status: model.TaskStatusInProgress},
	{Title: "In Review", Position: 3, Status: model.TaskStatusInReview},
	{Title: "Done", Position: 4, Status: model.TaskStatusDone},
}

// ParseStatus validates a submitted status, ignoring case. Empty means TODO.
func ParseStatus(s string) (model.TaskStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.TaskStatusTodo, nil
	}
	status := model.TaskStatus(strings.ToUpper(s))
	if _, err := ColumnTitle(status); err != nil {
		return "", err
	}
	return status, nil
}

// ColumnTitle returns the column a status belongs in.
func ColumnTitle(status model.TaskStatus) (string, error) {
	for _, c := range DefaultColumns {
		if c.Status == status {
			return c.Title, nil
		}
	}
	return "", errs.Validation("Invalid status %q", string(status))
}

// StatusOf returns the status whose column has the given title, case-insensitively.
func StatusOf(title string) (model.TaskStatus, bool) {
	for _, c := range DefaultColumns {
		if strings.EqualFold(c.Title, title) {
			return c.Status, true
		}
	}
	return "", false
}

func missingColumn(title string) error {
	return errs.Validation("No %q column found; ensure default columns exist", title)
}

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

func (e *Engine) WithTx(tx *gorm.DB) *Engine {
	return &Engine{db: tx}
}

// ProvisionBoard creates the default columns of a new board. Run it in the
// transaction that created the board so a partial failure removes the board too.
func (e *Engine) ProvisionBoard(ctx context.Context, boardID uint) ([]model.TaskList, error) {
	lists := make([]model.TaskList, 0, len(DefaultColumns))
	for _, c := range DefaultColumns {
		lists = append(lists, model.TaskList{BoardID: boardID, Title: c.Title, Position: c.Position})
	}
	if err := e.db.WithContext(ctx).Create(&lists).Error; err != nil {
		return nil, errs.Internal(fmt.Sprintf("provision columns for board %d", boardID), err)
	}
	return lists, nil
}

// PlaceNew resolves the column for a new task with the given status. The
// column must sit on a board the user can see; boardID narrows the search to
// one board, otherwise the first matching board in id order wins.
func (e *Engine) PlaceNew(ctx context.Context, userID uint, status model.TaskStatus, boardID uint) (*model.TaskList, error) {
	title, err := ColumnTitle(status)
	if err != nil {
		return nil, err
	}
	q := e.db.WithContext(ctx).
		Where("LOWER(title) = ?", strings.ToLower(title)).
		Where("board_id IN (?)", membership.BoardIDs(e.db, userID))
	if boardID != 0 {
		q = q.Where("board_id = ?", boardID)
	}
	var lists []model.TaskList
	if err := q.Order("board_id, position, id").Limit(1).Find(&lists).Error; err != nil {
		return nil, errs.Internal("locate column", err)
	}
	if len(lists) == 0 {
		return nil, missingColumn(title)
	}
	return &lists[0], nil
}

// Relocate moves task to the column matching status on its current board.
// It only changes task.TaskListID and reports whether the column changed; a
// status equal to the current one never relocates.
func (e *Engine) Relocate(ctx context.Context, task *model.Task, status model.TaskStatus) (bool, error) {
	if status == task.Status {
		return false, nil
	}
	title, err := ColumnTitle(status)
	if err != nil {
		return false, err
	}
	var current model.TaskList
	if err := e.db.WithContext(ctx).Select("id", "board_id").First(&current, task.TaskListID).Error; err != nil {
		return false, errs.FromStore(err, "Task list")
	}
	var lists []model.TaskList
	err = e.db.WithContext(ctx).
		Where("board_id = ? AND LOWER(title) = ?", current.BoardID, strings.ToLower(title)).
		Order("position, id").
		Limit(1).
		Find(&lists).Error
	if err != nil {
		return false, errs.Internal("locate column", err)
	}
	if len(lists) == 0 {
		return false, missingColumn(title)
	}
	task.Status = status
	if lists[0].ID == task.TaskListID {
		return false, nil
	}
	task.TaskListID = lists[0].ID
	return true, nil
}
