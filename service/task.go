package service

import (
	"taskboard/gateway"
	"taskboard/response"

	"github.com/gin-gonic/gin"
)

type createTaskReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	WorkType    string  `json:"work_type"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Board       uint    `json:"board"`
	Position    int     `json:"position"`
	Parent      *uint   `json:"parent"`
	Sprint      *uint   `json:"sprint"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
	StoryPoints *int    `json:"story_points"`
	Assignees   []uint  `json:"assignees"`
}

// updateTaskReq uses pointers so absent fields are left alone.
type updateTaskReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	WorkType    *string `json:"work_type"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Position    *int    `json:"position"`
	Parent      *uint   `json:"parent"`
	Sprint      *uint   `json:"sprint"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
	StoryPoints *int    `json:"story_points"`
}

func RegisterTasks(r *gin.RouterGroup, s *Server) {
	r.POST("/tasks", s.handleCreateTask)
	r.GET("/tasks", s.handleListTasks)
	r.GET("/tasks/:id", s.handleGetTask)
	r.PATCH("/tasks/:id", s.handleUpdateTask)
	r.DELETE("/tasks/:id", s.handleDeleteTask)
}

// handleCreateTask places the task in the column matching its status.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	task, err := s.gw.CreateTask(c.Request.Context(), currentActor(c), gateway.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		WorkType:    req.WorkType,
		Status:      req.Status,
		Priority:    req.Priority,
		Board:       req.Board,
		Position:    req.Position,
		Parent:      req.Parent,
		Sprint:      req.Sprint,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		StoryPoints: req.StoryPoints,
		Assignees:   req.Assignees,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	boardID, ok := queryID(c, "board")
	if !ok {
		return
	}
	listID, ok := queryID(c, "task_list")
	if !ok {
		return
	}
	tasks, err := s.gw.ListTasks(c.Request.Context(), currentActor(c), gateway.TaskFilter{
		Board:    boardID,
		TaskList: listID,
		Status:   c.Query("status"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	task, err := s.gw.GetTask(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, task)
}

// handleUpdateTask applies a partial update; a new status moves the task between columns.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	task, err := s.gw.UpdateTask(c.Request.Context(), currentActor(c), id, gateway.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		WorkType:    req.WorkType,
		Status:      req.Status,
		Priority:    req.Priority,
		Position:    req.Position,
		Parent:      req.Parent,
		Sprint:      req.Sprint,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		StoryPoints: req.StoryPoints,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.gw.DeleteTask(c.Request.Context(), currentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "deleted"})
}
