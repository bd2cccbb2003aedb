package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gavinbarnard/timetracker/internal/models"
	"github.com/gavinbarnard/timetracker/internal/services"
)

type taskResponse struct {
	ID               string    `json:"id"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	ReferenceTickets []string  `json:"reference_tickets"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:               task.ID,
		Description:      task.Description,
		StartTime:        task.StartTime,
		EndTime:          task.EndTime,
		ReferenceTickets: task.ReferenceTickets,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

type createTaskRequest struct {
	Description      string    `json:"description" binding:"required"`
	StartTime        time.Time `json:"start_time" binding:"required"`
	EndTime          time.Time `json:"end_time" binding:"required"`
	ReferenceTickets []string  `json:"reference_tickets" binding:"required,min=1"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		ReferenceTickets: req.ReferenceTickets,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	taskID := c.Param("id")

	task, err := h.tasks.GetTask(c, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	bounds, err := parseRangeBounds(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse range bounds")
		abort(c, newBadRequestError(errInvalidDateBound.Error()))
		return
	}

	tasks, err := h.tasks.ListTasks(c, bounds)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortServiceError(c, err)
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}

	c.JSON(http.StatusOK, response)
}

type updateTaskRequest struct {
	Description      *string    `json:"description,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	ReferenceTickets []string   `json:"reference_tickets,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID := c.Param("id")

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:               taskID,
		Description:      req.Description,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		ReferenceTickets: req.ReferenceTickets,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		abortServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseRangeBounds reads the optional start_date/end_date query
// params. A bound is either a plain date (the end bound then covers
// the whole day) or a full RFC 3339 timestamp.
func parseRangeBounds(c *gin.Context) (services.RangeBounds, error) {
	var bounds services.RangeBounds

	start, err := parseDateBound(c.Query("start_date"), false)
	if err != nil {
		return bounds, err
	}
	end, err := parseDateBound(c.Query("end_date"), true)
	if err != nil {
		return bounds, err
	}

	bounds.Start = start
	bounds.End = end
	return bounds, nil
}

func parseDateBound(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, value)
	if err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t, nil
	}

	t, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
