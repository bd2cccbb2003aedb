package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gavinbarnard/timetracker/internal/services"
	"github.com/gavinbarnard/timetracker/internal/storage"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidDateBound   = errors.New("invalid date bound, expected YYYY-MM-DD or RFC 3339")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

// abortServiceError maps a service error to its HTTP outcome:
// validation failures are 400, an absent task is 404, an unreachable
// backend is 503, everything else is 500.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrEmptyDescription),
		errors.Is(err, services.ErrInvalidTimeRange),
		errors.Is(err, services.ErrNoReferenceTickets),
		errors.Is(err, services.ErrInvalidQueryBounds),
		errors.Is(err, services.ErrMissingExportBounds):
		abort(c, newBadRequestError(err.Error()))
	case errors.Is(err, storage.ErrUnavailable):
		abort(c, newAPIError(http.StatusServiceUnavailable, storage.ErrUnavailable.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}
