package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb), m
}

func TestPing(t *testing.T) {
	r, _ := newTestRedis(t)
	require.NoError(t, r.Ping(context.Background()))
}

func TestDrainReadsAndClears(t *testing.T) {
	ctx := context.Background()
	r, m := newTestRedis(t)

	require.NoError(t, r.RPush(ctx, "route:justice", []byte(`{"message_id":"j1"}`), `{"message_id":"j2"}`))
	require.NoError(t, r.RPush(ctx, "route:standard", "s1"))

	n, err := r.LLen(ctx, "route:justice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	vals, err := r.Drain(ctx, "route:justice")
	require.NoError(t, err)
	assert.Equal(t, []string{`{"message_id":"j1"}`, `{"message_id":"j2"}`}, vals)
	assert.False(t, m.Exists("route:justice"))

	vals, err = r.Drain(ctx, "route:justice")
	require.NoError(t, err)
	assert.Empty(t, vals)

	other, err := m.List("route:standard")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, other, "other routes are untouched")
}

func TestLLenMissingKey(t *testing.T) {
	r, _ := newTestRedis(t)

	n, err := r.LLen(context.Background(), "route:law-enforcement")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExpire(t *testing.T) {
	ctx := context.Background()
	r, m := newTestRedis(t)

	require.NoError(t, r.RPush(ctx, "route:justice", "j1"))
	require.NoError(t, r.Expire(ctx, "route:justice", time.Hour))
	assert.Equal(t, time.Hour, m.TTL("route:justice"))

	m.FastForward(59 * time.Minute)
	n, err := r.LLen(ctx, "route:justice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	m.FastForward(time.Minute)
	n, err = r.LLen(ctx, "route:justice")
	require.NoError(t, err)
	assert.Zero(t, n)
}
