package storage

import (
	"context"
	"sync"
	"time"

	"github.com/gavinbarnard/timetracker/internal/models"
)

// memoryStore is the no-index fallback: a plain map with full-scan
// range filtering. It backs the "memory" driver and the unit tests.
type memoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
}

func NewMemoryStore() Store {
	return &memoryStore{
		tasks: make(map[string]*models.Task),
	}
}

func (s *memoryStore) Put(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return task.Clone(), nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryStore) QueryRange(_ context.Context, start, end time.Time) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, task := range s.tasks {
		if inRange(task.StartTime, start, end) {
			tasks = append(tasks, task.Clone())
		}
	}
	return tasks, nil
}

func (s *memoryStore) All(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task.Clone())
	}
	return tasks, nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}
