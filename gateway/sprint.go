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

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// SprintInput carries dates as YYYY-MM-DD strings.
type SprintInput struct {
	Board     uint
	Name      string
	StartDate string
	EndDate   string
	IsActive  bool
}

// SprintView renders dates as YYYY-MM-DD.
type SprintView struct {
	model.Sprint
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func sprintView(s model.Sprint) SprintView {
	return SprintView{Sprint: s, StartDate: formatDate(s.StartDate), EndDate: formatDate(s.EndDate)}
}

func parseDate(field, value string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}, errs.Validation("%s must be a date in YYYY-MM-DD form", field)
	}
	return datatypes.Date(t), nil
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

// CreateSprint is allowed to site operators and the board's workspace admins.
func (g *Gateway) CreateSprint(ctx context.Context, actor model.Actor, in SprintInput) (*SprintView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Board == 0 {
		return nil, errs.Validation("name and board are required")
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	if time.Time(end).Before(time.Time(start)) {
		return nil, errs.Validation("end_date must not be before start_date")
	}

	sprint := model.Sprint{Name: in.Name, BoardID: in.Board, StartDate: start, EndDate: end, IsActive: in.IsActive}
	err = g.transaction(ctx, func(tg *Gateway) error {
		chain, err := hierarchy.OfBoard(ctx, tg.db, in.Board)
		if err != nil {
			return err
		}
		if err := tg.requireWorkspaceAdmin(ctx, actor, chain.WorkspaceID, "Board"); err != nil {
			return err
		}
		if err := tg.db.Create(&sprint).Error; err != nil {
			return errs.Internal("create sprint", err)
		}
		activity.Record(tg.db, actor.UserID, chain.WorkspaceID, activity.CreatedSprint, model.EntitySprint, sprint.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := sprintView(sprint)
	return &v, nil
}

// ListSprints returns visible sprints, newest start date first.
func (g *Gateway) ListSprints(ctx context.Context, actor model.Actor, boardID uint) ([]SprintView, error) {
	q := g.db.WithContext(ctx).Where("board_id IN (?)", membership.BoardIDs(g.db, actor.UserID))
	if boardID != 0 {
		q = q.Where("board_id = ?", boardID)
	}
	var sprints []model.Sprint
	if err := q.Order("start_date DESC, id DESC").Find(&sprints).Error; err != nil {
		return nil, errs.Internal("list sprints", err)
	}
	out := make([]SprintView, 0, len(sprints))
	for _, s := range sprints {
		out = append(out, sprintView(s))
	}
	return out, nil
}
