package service

import (
	"strconv"

	"taskboard/activity"
	"taskboard/response"

	"github.com/gin-gonic/gin"
)

type assignReq struct {
	Task uint `json:"task"`
	User uint `json:"user"`
}

type commentReq struct {
	Task    uint   `json:"task"`
	Message string `json:"message"`
}

type editCommentReq struct {
	Message string `json:"message"`
}

func RegisterCollab(r *gin.RouterGroup, s *Server) {
	r.POST("/task-assignees", s.handleAssign)
	r.GET("/task-assignees", s.handleListAssignees)
	r.DELETE("/task-assignees/:id", s.handleUnassign)

	r.POST("/comments", s.handleAddComment)
	r.GET("/comments", s.handleListComments)
	r.PATCH("/comments/:id", s.handleEditComment)
	r.DELETE("/comments/:id", s.handleDeleteComment)
}

func RegisterActivity(r *gin.RouterGroup, s *Server) {
	r.GET("/activity", s.handleListActivity)
}

func (s *Server) handleAssign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	a, err := s.gw.Assign(c.Request.Context(), currentActor(c), req.Task, req.User)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

func (s *Server) handleListAssignees(c *gin.Context) {
	taskID, ok := queryID(c, "task")
	if !ok {
		return
	}
	list, err := s.gw.ListAssignees(c.Request.Context(), currentActor(c), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleUnassign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.gw.Unassign(c.Request.Context(), currentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "deleted"})
}

func (s *Server) handleAddComment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	comment, err := s.gw.AddComment(c.Request.Context(), currentActor(c), req.Task, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

func (s *Server) handleListComments(c *gin.Context) {
	taskID, ok := queryID(c, "task")
	if !ok {
		return
	}
	list, err := s.gw.ListComments(c.Request.Context(), currentActor(c), taskID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleEditComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req editCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	comment, err := s.gw.UpdateComment(c.Request.Context(), currentActor(c), id, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.gw.DeleteComment(c.Request.Context(), currentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": "deleted"})
}

func (s *Server) handleListActivity(c *gin.Context) {
	limit := activity.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequestError(c, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.gw.ListActivity(c.Request.Context(), currentActor(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}
