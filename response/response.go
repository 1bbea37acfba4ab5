package response

import (
	"net/http"

	"taskboard/errs"
	"taskboard/logutils"

	"github.com/gin-gonic/gin"
)

type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data any, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

// Success sends data with HTTP 200.
func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

// Created sends data with HTTP 201.
func Created(c *gin.Context, data any) {
	wrapResponse(c, http.StatusCreated, "", data, OK)
}

// HTTPError sends an HTTP error response with the specified HTTP code, error message, and error code.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

// BadRequestError is used when gin binding (ShouldBindJSON, ShouldBindQuery, ...) fails.
func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

// Status maps an error kind to its HTTP status and code.
func Status(kind errs.Kind) (int, ErrorCode) {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest, InvalidRequest
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized, Unauthenticated
	case errs.KindForbidden:
		return http.StatusForbidden, Forbidden
	case errs.KindNotFound:
		return http.StatusNotFound, NotFound
	case errs.KindConflict:
		return http.StatusBadRequest, Conflict
	default:
		return http.StatusInternalServerError, Internal
	}
}

// Error sends err with the status of its kind. Internal causes are logged and
// replaced by a generic message.
func Error(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		logutils.Log.WithFields(logutils.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString(RequestIDKey),
		}).Error(err)
	}
	httpCode, code := Status(kind)
	HTTPError(c, httpCode, errs.Message(err), code)
	c.Abort()
}

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"
