package service

import (
	"errors"
	"net/http"

	"taskboard/response"
	"taskboard/util"

	"github.com/gin-gonic/gin"
)

type refreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

type tokenResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func RegisterAuth(r *gin.RouterGroup, s *Server) {
	r.POST("/token/refresh", s.handleRefreshToken)
}

// handleRefreshToken exchanges a refresh token for a new pair while the user is still active.
func (s *Server) handleRefreshToken(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	msg, err := s.tokens.CheckRefreshToken(req.Refresh)
	if err != nil {
		if errors.Is(err, util.ErrTokenExpired) {
			response.HTTPError(c, http.StatusUnauthorized, "Token has expired", response.TokenExpired)
		} else {
			response.HTTPError(c, http.StatusUnauthorized, "Token is invalid", response.InvalidToken)
		}
		return
	}
	user, err := s.activeUser(c, msg.UserID)
	if err != nil {
		response.HTTPError(c, http.StatusUnauthorized, err.Error(), response.InvalidToken)
		return
	}
	access, refresh, err := s.tokens.CreateTokens(&util.JWTMessage{
		UserID:       user.ID,
		Username:     user.Username,
		RolePlatform: user.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tokenResp{Access: access, Refresh: refresh})
}
