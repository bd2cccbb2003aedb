package services

import (
	"context"
	"errors"
	"time"

	"github.com/gavinbarnard/timetracker/internal/models"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrEmptyDescription    = errors.New("task description must not be empty")
	ErrInvalidTimeRange    = errors.New("task start time must be before its end time")
	ErrNoReferenceTickets  = errors.New("task must have at least one reference ticket")
	ErrInvalidQueryBounds  = errors.New("invalid query bounds")
	ErrMissingExportBounds = errors.New("export requires both start and end bounds")
)

type TaskService interface {
	// CreateTask validates the params, assigns a unique ID and the
	// created/updated timestamps, and stores the task.
	//
	// It returns ErrEmptyDescription, ErrInvalidTimeRange or
	// ErrNoReferenceTickets if the params violate a task invariant.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTask returns the task with the given ID or ErrTaskNotFound.
	GetTask(ctx context.Context, id string) (*models.Task, error)

	// UpdateTask applies the non-nil params to the stored task,
	// refreshes its updated timestamp and stores it back. The ID and
	// the created timestamp never change.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask removes the task with the given ID.
	// It returns ErrTaskNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error

	// ListTasks returns tasks sorted ascending by start time, ties
	// broken by ID so the order is deterministic. With both bounds
	// set it returns only tasks whose start time falls within
	// [start, end] inclusive; with neither it returns all tasks.
	//
	// It returns ErrInvalidQueryBounds if exactly one bound is set
	// or if start is after end.
	ListTasks(ctx context.Context, bounds RangeBounds) ([]*models.Task, error)
}

type ExportService interface {
	// ExportCSV renders all tasks within [start, end] as CSV: a
	// header row, one row per task with its duration in hours, and a
	// trailing TOTAL row. Both bounds are mandatory; it returns
	// ErrMissingExportBounds when either is nil and
	// ErrInvalidQueryBounds when start is after end.
	ExportCSV(ctx context.Context, bounds RangeBounds) (*Export, error)
}

type CreateTaskParams struct {
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	ReferenceTickets []string
}

type UpdateTaskParams struct {
	ID               string
	Description      *string
	StartTime        *time.Time
	EndTime          *time.Time
	ReferenceTickets []string
}

// RangeBounds is a query range; a nil bound is absent.
type RangeBounds struct {
	Start *time.Time
	End   *time.Time
}

type Export struct {
	Filename string
	Data     []byte
}
