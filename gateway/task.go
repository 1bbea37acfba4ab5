package gateway

import (
	"context"
	"strings"
	"time"

	"taskboard/activity"
	"taskboard/dao/model"
	"taskboard/errs"
	"taskboard/hierarchy"
	"taskboard/membership"
	"taskboard/placement"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskInput is a new task. The column is never chosen directly: it follows
// from Status, optionally narrowed to one board.
type TaskInput struct {
	Title       string
	Description *string
	WorkType    string
	Status      string
	Priority    string
	Board       uint
	Position    int
	Parent      *uint
	Sprint      *uint
	StartDate   *string
	DueDate     *string
	StoryPoints *int
	Assignees   []uint
}

// TaskPatch holds the fields of a partial update; nil fields are left alone.
// A zero Parent or Sprint, an empty date and ClearStoryPoints clear the field.
type TaskPatch struct {
	Title       *string
	Description *string
	WorkType    *string
	Status      *string
	Priority    *string
	Position    *int
	Parent      *uint
	Sprint      *uint
	StartDate   *string
	DueDate     *string
	StoryPoints *int
}

// TaskView is a task with the ancestors derived from its column.
type TaskView struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	WorkType    model.WorkType   `json:"work_type"`
	Status      model.TaskStatus `json:"status"`
	Priority    model.Priority   `json:"priority"`
	TaskList    uint             `json:"task_list"`
	Position    int              `json:"position"`
	Parent      *uint            `json:"parent"`
	Sprint      *uint            `json:"sprint"`
	StartDate   *string          `json:"start_date"`
	DueDate     *string          `json:"due_date"`
	StoryPoints *int             `json:"story_points"`
	CreatedBy   *uint            `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	Workspace   uint             `json:"workspace"`
	Team        uint             `json:"team"`
	Board       uint             `json:"board"`
	Assignees   []uint           `json:"assignees"`
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	Board    uint
	TaskList uint
	Status   string
}

func optionalDate(field string, value *string) (*datatypes.Date, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func datesInOrder(start, due *datatypes.Date) error {
	if start != nil && due != nil && time.Time(*due).Before(time.Time(*start)) {
		return errs.Validation("due_date must not be before start_date")
	}
	return nil
}

func parseWorkType(s string) (model.WorkType, error) {
	if s == "" {
		return model.WorkTypeTask, nil
	}
	w := model.WorkType(strings.ToUpper(s))
	if !w.Valid() {
		return "", errs.Validation("Invalid work_type %q", s)
	}
	return w, nil
}

func parsePriority(s string) (model.Priority, error) {
	if s == "" {
		return model.PriorityMedium, nil
	}
	p := model.Priority(strings.ToUpper(s))
	if !p.Valid() {
		return "", errs.Validation("Invalid priority %q", s)
	}
	return p, nil
}

// ClearStoryPoints in a TaskPatch removes the task's estimate.
const ClearStoryPoints = -1

func checkPosition(p int) error {
	if p < 0 {
		return errs.Validation("position must not be negative")
	}
	return nil
}

func checkStoryPoints(p *int) error {
	if p != nil && *p < 0 {
		return errs.Validation("story_points must not be negative")
	}
	return nil
}

// CreateTask places a new task in the column matching its status and assigns
// the requested users, all in one transaction.
func (g *Gateway) CreateTask(ctx context.Context, actor model.Actor, in TaskInput) (*TaskView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.Validation("title is required")
	}
	status, err := placement.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	workType, err := parseWorkType(in.WorkType)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	if err := checkPosition(in.Position); err != nil {
		return nil, err
	}
	if err := checkStoryPoints(in.StoryPoints); err != nil {
		return nil, err
	}
	start, err := optionalDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	due, err := optionalDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	if err := datesInOrder(start, due); err != nil {
		return nil, err
	}

	creator := actor.UserID
	task := model.Task{
		Title:       title,
		Description: in.Description,
		WorkType:    workType,
		Status:      status,
		Priority:    priority,
		Position:    in.Position,
		StartDate:   start,
		DueDate:     due,
		StoryPoints: in.StoryPoints,
		CreatedByID: &creator,
	}
	var view *TaskView
	err = g.transaction(ctx, func(tg *Gateway) error {
		if in.Board != 0 {
			if _, err := tg.visibleBoard(ctx, actor, in.Board); err != nil {
				return err
			}
		}
		list, err := tg.engine.PlaceNew(ctx, actor.UserID, status, in.Board)
		if err != nil {
			return err
		}
		chain, err := hierarchy.OfTaskList(ctx, tg.db, list.ID)
		if err != nil {
			return err
		}
		task.TaskListID = list.ID
		if in.Parent != nil && *in.Parent != 0 {
			if err := tg.checkParent(ctx, actor, chain, 0, *in.Parent); err != nil {
				return err
			}
			task.ParentID = in.Parent
		}
		if in.Sprint != nil && *in.Sprint != 0 {
			if err := tg.checkSprint(ctx, chain, *in.Sprint); err != nil {
				return err
			}
			task.SprintID = in.Sprint
		}
		if err := tg.db.Create(&task).Error; err != nil {
			return errs.Internal("create task", err)
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.CreatedTask, model.EntityTask, task.ID)

		seen := make(map[uint]bool, len(in.Assignees))
		for _, uid := range in.Assignees {
			if uid == 0 || seen[uid] {
				continue
			}
			seen[uid] = true
			if _, err := tg.collab.AssignInWorkspace(ctx, actor, chain.WorkspaceID, task.ID, uid); err != nil {
				return err
			}
		}
		views, err := taskViews(ctx, tg.db, []model.Task{task})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateTask applies a partial update. A status change moves the task to the
// matching column on its board; other fields are written as submitted.
func (g *Gateway) UpdateTask(ctx context.Context, actor model.Actor, id uint, patch TaskPatch) (*TaskView, error) {
	var view *TaskView
	err := g.transaction(ctx, func(tg *Gateway) error {
		task, chain, err := tg.visibleTask(ctx, actor, id)
		if err != nil {
			return err
		}
		updates := map[string]any{}

		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return errs.Validation("title must not be empty")
			}
			updates["title"] = title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.WorkType != nil {
			w, err := parseWorkType(*patch.WorkType)
			if err != nil {
				return err
			}
			updates["work_type"] = w
		}
		if patch.Priority != nil {
			p, err := parsePriority(*patch.Priority)
			if err != nil {
				return err
			}
			updates["priority"] = p
		}
		if patch.Status != nil {
			status, err := placement.ParseStatus(*patch.Status)
			if err != nil {
				return err
			}
			if status != task.Status {
				moved, err := tg.engine.Relocate(ctx, task, status)
				if err != nil {
					return err
				}
				updates["status"] = task.Status
				if moved {
					updates["task_list_id"] = task.TaskListID
				}
			}
		}
		if patch.Position != nil {
			if err := checkPosition(*patch.Position); err != nil {
				return err
			}
			updates["position"] = *patch.Position
		}
		if patch.Parent != nil {
			if *patch.Parent == 0 {
				updates["parent_id"] = nil
			} else {
				if err := tg.checkParent(ctx, actor, chain, task.ID, *patch.Parent); err != nil {
					return err
				}
				updates["parent_id"] = *patch.Parent
			}
		}
		if patch.Sprint != nil {
			if *patch.Sprint == 0 {
				updates["sprint_id"] = nil
			} else {
				if err := tg.checkSprint(ctx, chain, *patch.Sprint); err != nil {
					return err
				}
				updates["sprint_id"] = *patch.Sprint
			}
		}
		start, due := task.StartDate, task.DueDate
		if patch.StartDate != nil {
			if start, err = optionalDate("start_date", patch.StartDate); err != nil {
				return err
			}
			updates["start_date"] = dateValue(start)
		}
		if patch.DueDate != nil {
			if due, err = optionalDate("due_date", patch.DueDate); err != nil {
				return err
			}
			updates["due_date"] = dateValue(due)
		}
		if err := datesInOrder(start, due); err != nil {
			return err
		}
		if patch.StoryPoints != nil {
			if *patch.StoryPoints == ClearStoryPoints {
				updates["story_points"] = nil
			} else {
				if err := checkStoryPoints(patch.StoryPoints); err != nil {
					return err
				}
				updates["story_points"] = *patch.StoryPoints
			}
		}

		if len(updates) > 0 {
			if err := tg.db.Model(&model.Task{ID: task.ID}).Updates(updates).Error; err != nil {
				return errs.Internal("update task", err)
			}
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.UpdatedTask, model.EntityTask, task.ID)

		var saved model.Task
		if err := tg.db.First(&saved, task.ID).Error; err != nil {
			return errs.FromStore(err, "Task")
		}
		views, err := taskViews(ctx, tg.db, []model.Task{saved})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteTask removes a task with its assignments and comments. Subtasks are
// detached, not deleted.
func (g *Gateway) DeleteTask(ctx context.Context, actor model.Actor, id uint) error {
	return g.transaction(ctx, func(tg *Gateway) error {
		task, chain, err := tg.visibleTask(ctx, actor, id)
		if err != nil {
			return err
		}
		if err := tg.db.Where("task_id = ?", task.ID).Delete(&model.Comment{}).Error; err != nil {
			return errs.Internal("delete comments", err)
		}
		if err := tg.db.Where("task_id = ?", task.ID).Delete(&model.TaskAssignee{}).Error; err != nil {
			return errs.Internal("delete assignees", err)
		}
		if err := tg.db.Model(&model.Task{}).Where("parent_id = ?", task.ID).Update("parent_id", nil).Error; err != nil {
			return errs.Internal("detach subtasks", err)
		}
		if err := tg.db.Delete(&model.Task{}, task.ID).Error; err != nil {
			return errs.Internal("delete task", err)
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.DeletedTask, model.EntityTask, task.ID)
		return nil
	})
}

func (g *Gateway) GetTask(ctx context.Context, actor model.Actor, id uint) (*TaskView, error) {
	task, _, err := g.visibleTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	views, err := taskViews(ctx, g.db, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListTasks returns visible tasks ordered by column and position.
func (g *Gateway) ListTasks(ctx context.Context, actor model.Actor, f TaskFilter) ([]TaskView, error) {
	q := g.db.WithContext(ctx).Where("task_list_id IN (?)", membership.TaskListIDs(g.db, actor.UserID))
	if f.TaskList != 0 {
		q = q.Where("task_list_id = ?", f.TaskList)
	}
	if f.Board != 0 {
		q = q.Where("task_list_id IN (?)", fresh(g.db).Model(&model.TaskList{}).Select("id").Where("board_id = ?", f.Board))
	}
	if f.Status != "" {
		status, err := placement.ParseStatus(f.Status)
		if err != nil {
			return nil, err
		}
		q = q.Where("status = ?", status)
	}
	var tasks []model.Task
	if err := q.Order("task_list_id, position, id").Find(&tasks).Error; err != nil {
		return nil, errs.Internal("list tasks", err)
	}
	return taskViews(ctx, g.db, tasks)
}

// visibleTask loads a task and its chain; tasks outside the actor's
// workspaces are NotFound.
func (g *Gateway) visibleTask(ctx context.Context, actor model.Actor, id uint) (*model.Task, hierarchy.Chain, error) {
	var task model.Task
	err := g.db.WithContext(ctx).
		Where("id = ? AND id IN (?)", id, membership.TaskIDs(g.db, actor.UserID)).
		Take(&task).Error
	if err != nil {
		return nil, hierarchy.Chain{}, errs.FromStore(err, "Task")
	}
	chain, err := hierarchy.OfTask(ctx, g.db, &task)
	if err != nil {
		return nil, hierarchy.Chain{}, err
	}
	return &task, chain, nil
}

// checkParent requires parentID to be a visible task in the same workspace
// that does not descend from taskID. taskID is zero for new tasks.
func (g *Gateway) checkParent(ctx context.Context, actor model.Actor, chain hierarchy.Chain, taskID, parentID uint) error {
	if parentID == taskID {
		return errs.Validation("A task cannot be its own parent")
	}
	parent, parentChain, err := g.visibleTask(ctx, actor, parentID)
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return errs.Validation("Parent task does not exist")
		}
		return err
	}
	if parentChain.WorkspaceID != chain.WorkspaceID {
		return errs.Validation("Parent task must belong to the same workspace")
	}
	if taskID == 0 {
		return nil
	}
	seen := map[uint]bool{parent.ID: true}
	next := parent.ParentID
	for next != nil {
		if *next == taskID {
			return errs.Validation("Parent would create a cycle")
		}
		if seen[*next] {
			break
		}
		seen[*next] = true
		var ancestor model.Task
		err := g.db.WithContext(ctx).Select("id", "parent_id").First(&ancestor, *next).Error
		if err != nil {
			if errs.Is(errs.FromStore(err, "Task"), errs.KindNotFound) {
				break
			}
			return errs.Internal("walk parents", err)
		}
		next = ancestor.ParentID
	}
	return nil
}

func (g *Gateway) checkSprint(ctx context.Context, chain hierarchy.Chain, sprintID uint) error {
	var sprint model.Sprint
	if err := g.db.WithContext(ctx).Select("id", "board_id").First(&sprint, sprintID).Error; err != nil {
		if errs.Is(errs.FromStore(err, "Sprint"), errs.KindNotFound) {
			return errs.Validation("Sprint does not exist")
		}
		return errs.Internal("load sprint", err)
	}
	if sprint.BoardID != chain.BoardID {
		return errs.Validation("Sprint must belong to the task's board")
	}
	return nil
}

// taskViews attaches derived ancestors and assignees in two batch queries.
func taskViews(ctx context.Context, db *gorm.DB, tasks []model.Task) ([]TaskView, error) {
	out := make([]TaskView, 0, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}
	listIDs := make([]uint, 0, len(tasks))
	taskIDs := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		listIDs = append(listIDs, t.TaskListID)
		taskIDs = append(taskIDs, t.ID)
	}
	chains, err := hierarchy.OfTaskLists(ctx, db, listIDs)
	if err != nil {
		return nil, err
	}
	var assignees []model.TaskAssignee
	if err := db.WithContext(ctx).Where("task_id IN ?", taskIDs).Order("id").Find(&assignees).Error; err != nil {
		return nil, errs.Internal("load assignees", err)
	}
	byTask := make(map[uint][]uint, len(tasks))
	for _, a := range assignees {
		byTask[a.TaskID] = append(byTask[a.TaskID], a.UserID)
	}
	for _, t := range tasks {
		chain := chains[t.TaskListID]
		users := byTask[t.ID]
		if users == nil {
			users = []uint{}
		}
		out = append(out, TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			WorkType:    t.WorkType,
			Status:      t.Status,
			Priority:    t.Priority,
			TaskList:    t.TaskListID,
			Position:    t.Position,
			Parent:      t.ParentID,
			Sprint:      t.SprintID,
			StartDate:   datePtr(t.StartDate),
			DueDate:     datePtr(t.DueDate),
			StoryPoints: t.StoryPoints,
			CreatedBy:   t.CreatedByID,
			CreatedAt:   t.CreatedAt,
			Workspace:   chain.WorkspaceID,
			Team:        chain.ProjectID,
			Board:       chain.BoardID,
			Assignees:   users,
		})
	}
	return out, nil
}

func datePtr(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := formatDate(*d)
	return &s
}

func dateValue(d *datatypes.Date) any {
	if d == nil {
		return nil
	}
	return *d
}
