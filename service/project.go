package service

import (
	"taskboard/gateway"
	"taskboard/response"

	"github.com/gin-gonic/gin"
)

type createProjectReq struct {
	Name      string `json:"name"`
	Workspace uint   `json:"workspace"`
}

type createBoardReq struct {
	Name    string `json:"name"`
	Project uint   `json:"project"`
}

type createTaskListReq struct {
	Board    uint   `json:"board"`
	Title    string `json:"title"`
	Position *int   `json:"position"`
}

type updateTaskListReq struct {
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

type createSprintReq struct {
	Board     uint   `json:"board"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
}

func RegisterProjects(r *gin.RouterGroup, s *Server) {
	r.POST("/projects", s.handleCreateProject)
	r.GET("/projects", s.handleListProjects)
	r.GET("/projects/:id", s.handleGetProject)

	r.POST("/boards", s.handleCreateBoard)
	r.GET("/boards", s.handleListBoards)
	r.GET("/boards/:id", s.handleGetBoard)

	r.POST("/task-lists", s.handleCreateTaskList)
	r.GET("/task-lists", s.handleListTaskLists)
	r.PATCH("/task-lists/:id", s.handleUpdateTaskList)
	r.DELETE("/task-lists/:id", s.handleDeleteTaskList)

	r.POST("/sprints", s.handleCreateSprint)
	r.GET("/sprints", s.handleListSprints)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	p, err := s.gw.CreateProject(c.Request.Context(), currentActor(c), req.Name, req.Workspace)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

func (s *Server) handleListProjects(c *gin.Context) {
	workspaceID, ok := queryID(c, "workspace")
	if !ok {
		return
	}
	list, err := s.gw.ListProjects(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := s.gw.GetProject(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

func (s *Server) handleCreateBoard(c *gin.Context) {
	var req createBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	b, err := s.gw.CreateBoard(c.Request.Context(), currentActor(c), req.Name, req.Project)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

func (s *Server) handleListBoards(c *gin.Context) {
	projectID, ok := queryID(c, "project")
	if !ok {
		return
	}
	list, err := s.gw.ListBoards(c.Request.Context(), currentActor(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleGetBoard(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := s.gw.GetBoard(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

func (s *Server) handleListTaskLists(c *gin.Context) {
	boardID, ok := queryID(c, "board")
	if !ok {
		return
	}
	list, err := s.gw.ListTaskLists(c.Request.Context(), currentActor(c), boardID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleCreateTaskList(c *gin.Context) {
	var req createTaskListReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	list, err := s.gw.CreateTaskList(c.Request.Context(), currentActor(c), gateway.TaskListInput{
		Board:    req.Board,
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, list)
}

func (s *Server) handleUpdateTaskList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateTaskListReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	list, err := s.gw.UpdateTaskList(c.Request.Context(), currentActor(c), id, gateway.TaskListPatch{
		Title:    req.Title,
		Position: req.Position,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleDeleteTaskList(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.gw.DeleteTaskList(c.Request.Context(), currentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "deleted"})
}

func (s *Server) handleCreateSprint(c *gin.Context) {
	var req createSprintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	sprint, err := s.gw.CreateSprint(c.Request.Context(), currentActor(c), gateway.SprintInput{
		Board:     req.Board,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sprint)
}

func (s *Server) handleListSprints(c *gin.Context) {
	boardID, ok := queryID(c, "board")
	if !ok {
		return
	}
	list, err := s.gw.ListSprints(c.Request.Context(), currentActor(c), boardID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
