package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"productimporter/internal/domain/entity"
)

const keyPrefix = "import_progress:"

// ProgressRepo stores one JSON progress record per job id. Records expire
// after the TTL so the status keyspace cannot grow without bound; terminal
// status survives in the job ledger.
type ProgressRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressRepo(client *redis.Client, ttl time.Duration) *ProgressRepo {
	return &ProgressRepo{client: client, ttl: ttl}
}

func (r *ProgressRepo) Set(ctx context.Context, jobID string, p entity.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+jobID, data, r.ttl).Err()
}

func (r *ProgressRepo) Get(ctx context.Context, jobID string) (entity.Progress, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.Progress{}, false, nil
	}
	if err != nil {
		return entity.Progress{}, false, err
	}

	var p entity.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return entity.Progress{}, false, err
	}
	return p, true, nil
}
