package service

import (
	"taskboard/dao/model"
	"taskboard/response"

	"github.com/gin-gonic/gin"
)

type userResp struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

func toUserResp(u *model.User) userResp {
	return userResp{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Nickname: u.Attributes.Data().Nickname,
		IsAdmin:  u.IsOperator(),
	}
}

func toUserResps(users []model.User) []userResp {
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	return out
}

func RegisterUsers(r *gin.RouterGroup, s *Server) {
	r.GET("/me", s.handleMe)
	r.GET("/users", s.handleListUsers)
	r.GET("/users/search", s.handleSearchUsers)
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.gw.Me(c.Request.Context(), currentActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserResp(user))
}

// handleListUsers lists the users of one workspace; no workspace means none.
func (s *Server) handleListUsers(c *gin.Context) {
	workspaceID, ok := queryID(c, "workspace")
	if !ok {
		return
	}
	users, err := s.gw.ListWorkspaceUsers(c.Request.Context(), currentActor(c), workspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserResps(users))
}

func (s *Server) handleSearchUsers(c *gin.Context) {
	workspaceID, ok := queryID(c, "workspace")
	if !ok {
		return
	}
	users, err := s.gw.SearchUsers(c.Request.Context(), currentActor(c), c.Query("q"), workspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toUserResps(users))
}
