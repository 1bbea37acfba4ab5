// Package service is the HTTP surface: routing, authentication, request
// logging and the translation of gateway results into response envelopes.
package service

import (
	"net/http"
	"strconv"

	"taskboard/gateway"
	"taskboard/response"
	"taskboard/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	gw     *gateway.Gateway
	tokens *util.TokenManager
}

// New builds the gin engine with middleware and every route registered.
func New(db *gorm.DB, tokens *util.TokenManager) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())

	s := &Server{
		engine: router,
		db:     db,
		gw:     gateway.New(db),
		tokens: tokens,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)
	RegisterAuth(api, s)

	authed := api.Group("", s.Authenticate())
	RegisterUsers(authed, s)
	RegisterWorkspaces(authed, s)
	RegisterProjects(authed, s)
	RegisterTasks(authed, s)
	RegisterCollab(authed, s)
	RegisterActivity(authed, s)
}

func (s *Server) handleHealth(c *gin.Context) {
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		response.HTTPError(c, http.StatusServiceUnavailable, "database unavailable", response.Internal)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

// parseID reads a numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequestError(c, "invalid identifier")
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric query parameter; absent means zero.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.BadRequestError(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
