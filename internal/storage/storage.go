package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gavinbarnard/timetracker/internal/models"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrUnavailable = errors.New("storage unavailable")
)

// Store is the task store accessor. Implementations keep the same
// semantics whether they use a secondary index on the start time or a
// full scan with in-memory filtering; the index is an optimization only.
type Store interface {
	// Put inserts or overwrites a task by its ID. Last write wins;
	// there is no optimistic concurrency check.
	Put(ctx context.Context, task *models.Task) error

	// Get returns the task with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Task, error)

	// Delete removes the task with the given ID.
	// It returns ErrNotFound if the task doesn't exist.
	Delete(ctx context.Context, id string) error

	// QueryRange returns all tasks whose start time falls within
	// [start, end] inclusive, in no guaranteed order. Ordering is
	// the caller's responsibility.
	QueryRange(ctx context.Context, start, end time.Time) ([]*models.Task, error)

	// All returns every stored task, in no guaranteed order.
	All(ctx context.Context) ([]*models.Task, error)

	// Ping probes the storage backend.
	Ping(ctx context.Context) error
}

// inRange reports whether t lies within [start, end] inclusive.
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
