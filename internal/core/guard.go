package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ExecutionGuard serializes executions of the same job when enabled.
// Acquire returns a *ConflictError if another execution holds the guard.
type ExecutionGuard interface {
	Acquire(ctx context.Context, jobID string) (release func(), err error)
}

// NoopGuard never blocks. Concurrent triggers of the same job each run.
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

const lockKeyPrefix = "backupd:exec-lock:"

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard is an advisory per-job lock held in Redis with a TTL so a
// crashed caller cannot block a job forever.
type RedisGuard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisGuard(client redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, jobID string) (func(), error) {
	key := lockKeyPrefix + jobID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire execution lock for %s: %w", jobID, err)
	}
	if !ok {
		return nil, &ConflictError{JobID: jobID}
	}

	return func() {
		// Runs after the request context may already be cancelled.
		_ = releaseScript.Run(context.Background(), g.client, []string{key}, token).Err()
	}, nil
}
