package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gavinbarnard/timetracker/internal/models"
)

// PostgresStore keeps tasks in a relational table with a btree index
// on start_time backing the range queries.
type PostgresStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgresStore(logger zerolog.Logger, pgPool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		logger: logger,
		pgPool: pgPool,
	}
}

// Migrate creates the tasks table and its start time index.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const createTasksTableQuery = `
CREATE TABLE IF NOT EXISTS tasks (
    id                TEXT PRIMARY KEY,
    description       TEXT        NOT NULL,
    start_time        TIMESTAMPTZ NOT NULL,
    end_time          TIMESTAMPTZ NOT NULL,
    reference_tickets TEXT[]      NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_start_time_idx ON tasks (start_time)
`
	_, err := s.pgPool.Exec(ctx, createTasksTableQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to migrate tasks table")
		return unavailable("migrate", err)
	}
	s.logger.Debug().Msg("migrated tasks table")
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, task *models.Task) error {
	const upsertTaskQuery = `
INSERT INTO tasks (id,
                   description,
                   start_time,
                   end_time,
                   reference_tickets,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET description = EXCLUDED.description,
    start_time = EXCLUDED.start_time,
    end_time = EXCLUDED.end_time,
    reference_tickets = EXCLUDED.reference_tickets,
    created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at
`
	_, err := s.pgPool.Exec(
		ctx,
		upsertTaskQuery,
		task.ID,
		task.Description,
		task.StartTime,
		task.EndTime,
		task.ReferenceTickets,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to upsert task")
		return unavailable("put task", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("put task")
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{ID: id}

	const selectTaskByIDQuery = `
SELECT description,
       start_time,
       end_time,
       reference_tickets,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.Description,
		&task.StartTime,
		&task.EndTime,
		&task.ReferenceTickets,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task by id")
		return nil, unavailable("get task", err)
	}
	return task, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		id,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return unavailable("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		s.logger.Debug().
			Str("task_id", id).
			Msg("task not found")
		return ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func (s *PostgresStore) QueryRange(ctx context.Context, start, end time.Time) ([]*models.Task, error) {
	const selectTasksByRangeQuery = `
SELECT id,
       description,
       start_time,
       end_time,
       reference_tickets,
       created_at,
       updated_at
FROM tasks
WHERE start_time >= $1 AND start_time <= $2
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByRangeQuery,
		start,
		end,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by range")
		return nil, unavailable("query range", err)
	}
	defer rows.Close()

	return s.scanTasks(rows)
}

func (s *PostgresStore) All(ctx context.Context) ([]*models.Task, error) {
	const selectAllTasksQuery = `
SELECT id,
       description,
       start_time,
       end_time,
       reference_tickets,
       created_at,
       updated_at
FROM tasks
`
	rows, err := s.pgPool.Query(ctx, selectAllTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select all tasks")
		return nil, unavailable("enumerate tasks", err)
	}
	defer rows.Close()

	return s.scanTasks(rows)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	err := s.pgPool.Ping(ctx)
	if err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *PostgresStore) scanTasks(rows pgx.Rows) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err := rows.Scan(
			&task.ID,
			&task.Description,
			&task.StartTime,
			&task.EndTime,
			&task.ReferenceTickets,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, unavailable("scan task", err)
		}
		tasks = append(tasks, task)
	}

	err := rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, unavailable("iterate tasks", err)
	}
	return tasks, nil
}
