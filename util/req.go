package util

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appDb "github.com/sachalprvt-cloud/hibikiiii/db"
	"go.uber.org/zap"
)

// ErrorKind is the machine-readable failure class surfaced next to the
// human-readable message
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindRateLimited  ErrorKind = "rate_limited"
	KindStorage      ErrorKind = "storage"
)

type HTTPError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (kind=%v statusCode=%v)", he.Message, he.Kind, he.Status)
}

var MalformedIdHTTPErr = &HTTPError{
	Kind:    KindValidation,
	Status:  http.StatusBadRequest,
	Message: "id malformed",
}

func BuildJSONBindHTTPErr(err error) *HTTPError {
	return &HTTPError{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: err.Error(),
	}
}

// BuildDbHTTPErr maps storage sentinels onto the error taxonomy. Unknown
// storage failures surface a generic retry message without internal
// detail.
func BuildDbHTTPErr(err error) *HTTPError {
	switch {
	case err == appDb.ErrPostNotFound || err == appDb.ErrUserNotFound:
		return &HTTPError{
			Kind:    KindNotFound,
			Status:  http.StatusNotFound,
			Message: err.Error(),
		}
	case err == appDb.ErrAlreadyReported:
		return &HTTPError{
			Kind:    KindConflict,
			Status:  http.StatusConflict,
			Message: err.Error(),
		}
	case err == appDb.ErrInvalidTransition:
		return &HTTPError{
			Kind:    KindConflict,
			Status:  http.StatusConflict,
			Message: err.Error(),
		}
	case appDb.IsDupKeyErr(err):
		return &HTTPError{
			Kind:    KindConflict,
			Status:  http.StatusConflict,
			Message: "duplicate entry",
		}
	}
	return &HTTPError{
		Kind:    KindStorage,
		Status:  http.StatusInternalServerError,
		Message: "database error, try again",
	}
}

type HandlerOpts struct {
	Logger *zap.Logger
}

// HandlerWrapper adapts a typed handler onto gin. Success responses are
// {"success": true, "data": ...}; failures carry the error kind and
// message. Server-side failures are logged here so handlers don't have
// to.
func HandlerWrapper(handler func(c *gin.Context) (interface{}, *HTTPError), opts *HandlerOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, httpErr := handler(c)
		if httpErr != nil {
			if opts != nil && opts.Logger != nil && httpErr.Status >= http.StatusInternalServerError {
				opts.Logger.Error("request failed",
					zap.String("path", c.FullPath()),
					zap.String("kind", string(httpErr.Kind)),
					zap.String("message", httpErr.Message))
			}
			HandleHTTPErrorRes(c, httpErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    data,
		})
	}
}

// HandleHTTPErrorRes writes the error response. Break the route after
// calling this function.
func HandleHTTPErrorRes(c *gin.Context, err *HTTPError) {
	c.JSON(err.Status, gin.H{
		"success": false,
		"kind":    err.Kind,
		"message": err.Message,
	})
}
