package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gavinbarnard/timetracker/internal/models"
	"github.com/gavinbarnard/timetracker/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Store,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if strings.TrimSpace(params.Description) == "" {
		s.logger.Error().Msg("empty task description")
		return nil, ErrEmptyDescription
	}
	if !params.StartTime.Before(params.EndTime) {
		s.logger.Error().
			Time("start_time", params.StartTime).
			Time("end_time", params.EndTime).
			Msg("invalid task time range")
		return nil, ErrInvalidTimeRange
	}
	if len(params.ReferenceTickets) == 0 {
		s.logger.Error().Msg("no reference tickets")
		return nil, ErrNoReferenceTickets
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:               taskUUID.String(),
		Description:      params.Description,
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		ReferenceTickets: params.ReferenceTickets,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.store.Put(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to store task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to get task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.store.Get(ctx, params.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", params.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to get task")
		return nil, err
	}

	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.StartTime != nil {
		task.StartTime = *params.StartTime
	}
	if params.EndTime != nil {
		task.EndTime = *params.EndTime
	}
	if params.ReferenceTickets != nil {
		task.ReferenceTickets = params.ReferenceTickets
	}

	if strings.TrimSpace(task.Description) == "" {
		s.logger.Error().
			Str("task_id", task.ID).
			Msg("empty task description")
		return nil, ErrEmptyDescription
	}
	if !task.StartTime.Before(task.EndTime) {
		s.logger.Error().
			Str("task_id", task.ID).
			Time("start_time", task.StartTime).
			Time("end_time", task.EndTime).
			Msg("invalid task time range")
		return nil, ErrInvalidTimeRange
	}
	if len(task.ReferenceTickets) == 0 {
		s.logger.Error().
			Str("task_id", task.ID).
			Msg("no reference tickets")
		return nil, ErrNoReferenceTickets
	}

	task.UpdatedAt = time.Now()

	err = s.store.Put(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to store task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().
				Str("task_id", id).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, bounds RangeBounds) ([]*models.Task, error) {
	var (
		tasks []*models.Task
		err   error
	)
	switch {
	case bounds.Start != nil && bounds.End != nil:
		if bounds.Start.After(*bounds.End) {
			s.logger.Error().
				Time("start", *bounds.Start).
				Time("end", *bounds.End).
				Msg("query start is after end")
			return nil, ErrInvalidQueryBounds
		}
		tasks, err = s.store.QueryRange(ctx, *bounds.Start, *bounds.End)
	case bounds.Start == nil && bounds.End == nil:
		tasks, err = s.store.All(ctx)
	default:
		s.logger.Error().Msg("exactly one query bound set")
		return nil, ErrInvalidQueryBounds
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to query tasks")
		return nil, err
	}

	sortTasks(tasks)

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed tasks")
	return tasks, nil
}

// sortTasks orders ascending by start time, ties broken by ID, so
// repeated queries over the same data always produce the same order.
func sortTasks(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].StartTime.Equal(tasks[j].StartTime) {
			return tasks[i].StartTime.Before(tasks[j].StartTime)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
