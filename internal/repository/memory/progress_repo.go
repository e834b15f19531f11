package memory

import (
	"context"
	"sync"

	"productimporter/internal/domain/entity"
)

// ProgressRepo is a mutex-guarded in-process tracker, safe for concurrent
// polling readers and a single writer per job. Used by tests and
// single-process runs; production uses the Redis-backed tracker.
type ProgressRepo struct {
	mu      sync.RWMutex
	records map[string]entity.Progress
}

func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{records: make(map[string]entity.Progress)}
}

func (r *ProgressRepo) Set(_ context.Context, jobID string, p entity.Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[jobID] = p
	return nil
}

func (r *ProgressRepo) Get(_ context.Context, jobID string) (entity.Progress, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.records[jobID]
	return p, ok, nil
}
