package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/revise/internal/mastery"
	"github.com/abhisek/revise/internal/spacedrep"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// StatusClientClosedRequest reports a request abandoned by the client before
// the repository answered.
const StatusClientClosedRequest = 499

// classify maps a scheduler error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, spacedrep.ErrValidation):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, mastery.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "repository_timeout"
	case errors.Is(err, spacedrep.ErrRepository):
		return http.StatusBadGateway, "repository_unavailable"
	case errors.Is(err, spacedrep.ErrComputation):
		return http.StatusInternalServerError, "computation_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// RespondSchedulerError writes the error envelope for err. Server-side
// failures are attached to the gin context for the request logger.
func RespondSchedulerError(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, status, code, err)
}
