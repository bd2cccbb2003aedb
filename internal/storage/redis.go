package storage

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gavinbarnard/timetracker/internal/models"
)

const (
	taskKeyPrefix = "timetracker:tasks:"
	startIndexKey = "timetracker:tasks_by_start"
)

// redisStore keeps every task as a JSON document at
// taskKeyPrefix+id and maintains a sorted set scored by the task's
// start time (unix milliseconds) as the secondary range index. The
// sorted set doubles as the enumeration of all task IDs.
type redisStore struct {
	logger zerolog.Logger
	client *redis.Client
}

func NewRedisStore(logger zerolog.Logger, client *redis.Client) Store {
	return &redisStore{
		logger: logger,
		client: client,
	}
}

func (s *redisStore) Put(ctx context.Context, task *models.Task) error {
	data, err := encodeTask(task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to encode task")
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, taskKeyPrefix+task.ID, data, 0)
	pipe.ZAdd(ctx, startIndexKey, redis.Z{
		Score:  float64(task.StartTime.UnixMilli()),
		Member: task.ID,
	})

	_, err = pipe.Exec(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to put task")
		return unavailable("put task", err)
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("put task")
	return nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*models.Task, error) {
	data, err := s.client.Get(ctx, taskKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Debug().
				Str("task_id", id).
				Msg("task not found")
			return nil, ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to get task")
		return nil, unavailable("get task", err)
	}

	task, err := decodeTask(data)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to decode task")
		return nil, err
	}
	return task, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	delCmd := pipe.Del(ctx, taskKeyPrefix+id)
	pipe.ZRem(ctx, startIndexKey, id)

	_, err := pipe.Exec(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return unavailable("delete task", err)
	}

	if delCmd.Val() == 0 {
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

func (s *redisStore) QueryRange(ctx context.Context, start, end time.Time) ([]*models.Task, error) {
	ids, err := s.client.ZRangeByScore(ctx, startIndexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(start.UnixMilli(), 10),
		Max: strconv.FormatInt(end.UnixMilli(), 10),
	}).Result()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to query start time index")
		return nil, unavailable("query range", err)
	}

	tasks, err := s.fetchTasks(ctx, ids)
	if err != nil {
		return nil, err
	}

	// The index scores are truncated to milliseconds, so re-check the
	// exact bounds to keep the result set identical to a full scan.
	filtered := tasks[:0]
	for _, task := range tasks {
		if inRange(task.StartTime, start, end) {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}

func (s *redisStore) All(ctx context.Context) ([]*models.Task, error) {
	ids, err := s.client.ZRange(ctx, startIndexKey, 0, -1).Result()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to enumerate task ids")
		return nil, unavailable("enumerate tasks", err)
	}
	return s.fetchTasks(ctx, ids)
}

func (s *redisStore) Ping(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *redisStore) fetchTasks(ctx context.Context, ids []string) ([]*models.Task, error) {
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taskKeyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("count", len(keys)).
			Msg("failed to fetch task documents")
		return nil, unavailable("fetch tasks", err)
	}

	tasks := make([]*models.Task, 0, len(values))
	for i, value := range values {
		str, ok := value.(string)
		if !ok {
			// Index entry without a document, e.g. a concurrent
			// delete between ZRANGEBYSCORE and MGET.
			s.logger.Warn().
				Str("task_id", ids[i]).
				Msg("indexed task has no document")
			continue
		}

		task, err := decodeTask([]byte(str))
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", ids[i]).
				Msg("failed to decode task")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
