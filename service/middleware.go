package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"taskboard/dao/model"
	"taskboard/logutils"
	"taskboard/response"
	"taskboard/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"

	actorKey = "actor"
)

// RequestID keeps the caller's X-Request-ID or generates one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger writes one entry per request once it has been handled.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logutils.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}
		if actor, ok := actorOf(c); ok {
			fields["user_id"] = actor.UserID
		}
		entry := logutils.Log.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Authenticate requires a valid bearer access token belonging to an active user.
// The platform role is read from the user record, not the token.
func (s *Server) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(c, "Authentication credentials were not provided", response.Unauthenticated)
			return
		}
		msg, err := s.tokens.CheckToken(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, util.ErrTokenExpired) {
				unauthorized(c, "Token has expired", response.TokenExpired)
			} else {
				unauthorized(c, "Token is invalid", response.InvalidToken)
			}
			return
		}
		user, err := s.activeUser(c, msg.UserID)
		if err != nil {
			unauthorized(c, err.Error(), response.InvalidToken)
			return
		}
		c.Set(actorKey, model.ActorOf(user))
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string, code response.ErrorCode) {
	response.HTTPError(c, http.StatusUnauthorized, msg, code)
	c.Abort()
}

var errInactiveUser = errors.New("User not found or inactive")

func (s *Server) activeUser(c *gin.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		return nil, errInactiveUser
	}
	if user.Status != model.StatusActive {
		return nil, errInactiveUser
	}
	return &user, nil
}

func actorOf(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}

// currentActor is only called behind Authenticate.
func currentActor(c *gin.Context) model.Actor {
	actor, _ := actorOf(c)
	return actor
}
