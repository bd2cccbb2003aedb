package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinbarnard/timetracker/internal/storage"
)

func newTestTaskService(t *testing.T) TaskService {
	t.Helper()
	return NewTaskService(zerolog.Nop(), storage.NewMemoryStore())
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 5, hour, minute, 0, 0, time.UTC)
}

func boundsFor(start, end time.Time) RangeBounds {
	return RangeBounds{Start: &start, End: &end}
}

func TestCreateTaskAssignsIDAndTimestamps(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	before := time.Now()
	task, err := service.CreateTask(ctx, CreateTaskParams{
		Description:      "review release notes",
		StartTime:        at(9, 0),
		EndTime:          at(11, 0),
		ReferenceTickets: []string{"T-1"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.False(t, task.CreatedAt.Before(before))
	assert.True(t, task.CreatedAt.Equal(task.UpdatedAt))

	got, err := service.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Description, got.Description)
	assert.Equal(t, task.ReferenceTickets, got.ReferenceTickets)
}

func TestCreateTaskValidation(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	valid := CreateTaskParams{
		Description:      "meeting",
		StartTime:        at(9, 0),
		EndTime:          at(10, 0),
		ReferenceTickets: []string{"T-1"},
	}

	t.Run("empty description", func(t *testing.T) {
		params := valid
		params.Description = "  "
		_, err := service.CreateTask(ctx, params)
		assert.ErrorIs(t, err, ErrEmptyDescription)
	})

	t.Run("start not before end", func(t *testing.T) {
		params := valid
		params.EndTime = params.StartTime
		_, err := service.CreateTask(ctx, params)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("no reference tickets", func(t *testing.T) {
		params := valid
		params.ReferenceTickets = nil
		_, err := service.CreateTask(ctx, params)
		assert.ErrorIs(t, err, ErrNoReferenceTickets)
	})
}

func TestUpdateTaskPreservesIDAndCreatedAt(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		Description:      "draft report",
		StartTime:        at(9, 0),
		EndTime:          at(10, 0),
		ReferenceTickets: []string{"T-1"},
	})
	require.NoError(t, err)

	description := "final report"
	updated, err := service.UpdateTask(ctx, UpdateTaskParams{
		ID:          task.ID,
		Description: &description,
	})
	require.NoError(t, err)

	assert.Equal(t, task.ID, updated.ID)
	assert.True(t, task.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "final report", updated.Description)
	assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))

	// Untouched fields survive a partial update.
	assert.True(t, task.StartTime.Equal(updated.StartTime))
	assert.Equal(t, task.ReferenceTickets, updated.ReferenceTickets)
}

func TestUpdateTaskValidatesMergedState(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		Description:      "standup",
		StartTime:        at(9, 0),
		EndTime:          at(10, 0),
		ReferenceTickets: []string{"T-1"},
	})
	require.NoError(t, err)

	badStart := at(12, 0)
	_, err = service.UpdateTask(ctx, UpdateTaskParams{
		ID:        task.ID,
		StartTime: &badStart,
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestUpdateTaskNotFound(t *testing.T) {
	service := newTestTaskService(t)

	description := "anything"
	_, err := service.UpdateTask(context.Background(), UpdateTaskParams{
		ID:          "missing",
		Description: &description,
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTaskThenGetNotFound(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		Description:      "cleanup",
		StartTime:        at(9, 0),
		EndTime:          at(10, 0),
		ReferenceTickets: []string{"T-1"},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(ctx, task.ID))

	_, err = service.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assert.ErrorIs(t, service.DeleteTask(ctx, task.ID), ErrTaskNotFound)
}

func TestListTasksFiltersAndSorts(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	mustCreate := func(description string, start, end time.Time) {
		t.Helper()
		_, err := service.CreateTask(ctx, CreateTaskParams{
			Description:      description,
			StartTime:        start,
			EndTime:          end,
			ReferenceTickets: []string{"T-1"},
		})
		require.NoError(t, err)
	}

	mustCreate("afternoon", at(13, 15), at(14, 0))
	mustCreate("morning", at(9, 0), at(11, 0))
	mustCreate("previous day", at(9, 0).AddDate(0, 0, -1), at(10, 0).AddDate(0, 0, -1))

	tasks, err := service.ListTasks(ctx, boundsFor(at(0, 0), at(23, 59)))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "morning", tasks[0].Description)
	assert.Equal(t, "afternoon", tasks[1].Description)

	all, err := service.ListTasks(ctx, RangeBounds{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListTasksTiesBrokenByID(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	// Several tasks sharing a start time must always come back in
	// the same order.
	for i := 0; i < 5; i++ {
		_, err := service.CreateTask(ctx, CreateTaskParams{
			Description:      "parallel",
			StartTime:        at(9, 0),
			EndTime:          at(10, 0),
			ReferenceTickets: []string{"T-1"},
		})
		require.NoError(t, err)
	}

	first, err := service.ListTasks(ctx, RangeBounds{})
	require.NoError(t, err)
	require.Len(t, first, 5)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].ID, first[i].ID)
	}

	second, err := service.ListTasks(ctx, RangeBounds{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListTasksInvalidBounds(t *testing.T) {
	service := newTestTaskService(t)
	ctx := context.Background()

	start := at(9, 0)
	_, err := service.ListTasks(ctx, RangeBounds{Start: &start})
	assert.ErrorIs(t, err, ErrInvalidQueryBounds)

	end := at(8, 0)
	_, err = service.ListTasks(ctx, RangeBounds{Start: &start, End: &end})
	assert.ErrorIs(t, err, ErrInvalidQueryBounds)
}
