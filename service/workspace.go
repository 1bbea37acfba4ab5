package service

import (
	"taskboard/response"

	"github.com/gin-gonic/gin"
)

type createWorkspaceReq struct {
	Name string `json:"name"`
}

type addMemberReq struct {
	Workspace uint   `json:"workspace"`
	Email     string `json:"email"`
}

type memberResp struct {
	ID        uint     `json:"id"`
	Workspace uint     `json:"workspace"`
	Role      string   `json:"role"`
	User      userResp `json:"user"`
}

func RegisterWorkspaces(r *gin.RouterGroup, s *Server) {
	r.POST("/workspaces", s.handleCreateWorkspace)
	r.GET("/workspaces", s.handleListWorkspaces)
	r.GET("/workspaces/:id", s.handleGetWorkspace)
	r.POST("/add-workspace-member", s.handleAddMember)
	r.GET("/workspace-members", s.handleListMembers)
}

func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req createWorkspaceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	ws, err := s.gw.CreateWorkspace(c.Request.Context(), currentActor(c), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ws)
}

func (s *Server) handleListWorkspaces(c *gin.Context) {
	list, err := s.gw.ListWorkspaces(c.Request.Context(), currentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *Server) handleGetWorkspace(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ws, err := s.gw.GetWorkspace(c.Request.Context(), currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ws)
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	user, _, err := s.gw.AddMember(c.Request.Context(), currentActor(c), req.Workspace, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"message": "User added successfully",
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

func (s *Server) handleListMembers(c *gin.Context) {
	workspaceID, ok := queryID(c, "workspace")
	if !ok {
		return
	}
	members, err := s.gw.ListMembers(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]memberResp, 0, len(members))
	for i := range members {
		m := &members[i]
		out = append(out, memberResp{
			ID:        m.ID,
			Workspace: m.WorkspaceID,
			Role:      string(m.Role),
			User:      toUserResp(&m.User),
		})
	}
	response.Success(c, out)
}
