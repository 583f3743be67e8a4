package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedTrip struct {
	ID    uint    `json:"id"`
	Price float64 `json:"price"`
	Seats int     `json:"seats"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_MissIsNotAnError(t *testing.T) {
	c, _ := newTestCache(t)

	var dest cachedTrip
	found, err := c.Get(context.Background(), "trips:missing", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, dest)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	want := cachedTrip{ID: 7, Price: 4500.5, Seats: 40}
	require.NoError(t, c.Set(ctx, "trips:7", want, time.Minute))

	raw, err := mr.Get("trips:7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"price":4500.5,"seats":40}`, raw)

	var got cachedTrip
	found, err := c.Get(ctx, "trips:7", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx))
	require.NoError(t, c.Delete(ctx, "trips:7", "trips:8"))
	assert.False(t, mr.Exists("trips:7"))
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "trips:1", cachedTrip{ID: 1}, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("trips:1"))

	mr.FastForward(31 * time.Second)

	var got cachedTrip
	found, err := c.Get(ctx, "trips:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("trips:bad", "not json"))

	var got cachedTrip
	found, err := c.Get(context.Background(), "trips:bad", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCache_Ping(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedisCache_Errors(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisCache(context.Background(), "redis://"+addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var dest int
	found, err := c.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
}
