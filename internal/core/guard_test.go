package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopGuard(t *testing.T) {
	var g NoopGuard
	for i := 0; i < 2; i++ {
		release, err := g.Acquire(context.Background(), "job-1")
		require.NoError(t, err)
		require.NotNil(t, release)
		release()
	}
}

func TestRedisGuard_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	g := NewRedisGuard(client, time.Minute)
	release, err := g.Acquire(context.Background(), "job-1")
	require.Error(t, err)
	assert.Nil(t, release)
	assert.Contains(t, err.Error(), "acquire execution lock for job-1")

	var ce *ConflictError
	assert.False(t, errors.As(err, &ce))
}

func newMiniredisGuard(t *testing.T, ttl time.Duration) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisGuard(client, ttl), mr
}

func TestRedisGuard_AcquireAndRelease(t *testing.T) {
	g, mr := newMiniredisGuard(t, time.Minute)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, release)

	assert.True(t, mr.Exists("backupd:exec-lock:job-1"))
	assert.Equal(t, time.Minute, mr.TTL("backupd:exec-lock:job-1"))

	release()
	assert.False(t, mr.Exists("backupd:exec-lock:job-1"))

	// Free again once released.
	release, err = g.Acquire(ctx, "job-1")
	require.NoError(t, err)
	release()
}

func TestRedisGuard_HeldLockConflicts(t *testing.T) {
	g, _ := newMiniredisGuard(t, time.Minute)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "job-1")
	require.NoError(t, err)
	defer release()

	second, err := g.Acquire(ctx, "job-1")
	require.Error(t, err)
	assert.Nil(t, second)

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "job-1", ce.JobID)
	assert.Equal(t, "backup job job-1 already has an execution in progress", err.Error())

	// Other jobs are not affected.
	other, err := g.Acquire(ctx, "job-2")
	require.NoError(t, err)
	other()
}

func TestRedisGuard_ReleaseKeepsForeignToken(t *testing.T) {
	g, mr := newMiniredisGuard(t, time.Minute)

	release, err := g.Acquire(context.Background(), "job-1")
	require.NoError(t, err)

	// The lock expired and another caller took it.
	require.NoError(t, mr.Set("backupd:exec-lock:job-1", "other"))

	release()
	got, err := mr.Get("backupd:exec-lock:job-1")
	require.NoError(t, err)
	assert.Equal(t, "other", got)
}

func TestRedisGuard_ExpiredLockCanBeRetaken(t *testing.T) {
	g, mr := newMiniredisGuard(t, time.Minute)
	ctx := context.Background()

	_, err := g.Acquire(ctx, "job-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	release, err := g.Acquire(ctx, "job-1")
	require.NoError(t, err)
	release()
}
