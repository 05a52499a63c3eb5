package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	type payload struct {
		Count int64 `json:"count"`
	}

	found, err := GetJSON(ctx, "missing", &payload{})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, ContentLikesKey("c1"), payload{Count: 3}, time.Minute))

	var got payload
	found, err = GetJSON(ctx, ContentLikesKey("c1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 3, got.Count)
}

func TestCacheAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *int64) func() error {
		return func() error {
			calls++
			*dest = 7
			return nil
		}
	}

	var count int64
	require.NoError(t, CacheAside(ctx, "k", &count, time.Minute, fetch(&count)))
	assert.EqualValues(t, 7, count)
	assert.Equal(t, 1, calls)

	var again int64
	require.NoError(t, CacheAside(ctx, "k", &again, time.Minute, fetch(&again)))
	assert.EqualValues(t, 7, again, "second read comes from cache")
	assert.Equal(t, 1, calls, "fetch must not run on a cache hit")
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "k", 1, time.Minute))
	Invalidate(ctx, "k")

	var v int
	found, err := GetJSON(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilClientIsNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	found, err := GetJSON(ctx, "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, "k", 1, time.Minute))
	Invalidate(ctx, "k")
}
