package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
	return nil
}

func TestRemember(t *testing.T) {
	ctx := context.Background()

	t.Run("Second call is served from cache", func(t *testing.T) {
		l := NewLoader(newMemoryCache(), nil)
		var loads int32
		load := func(context.Context) ([]string, error) {
			atomic.AddInt32(&loads, 1)
			return []string{"a", "b"}, nil
		}

		first, err := Remember(ctx, l, "k", time.Minute, load)
		require.NoError(t, err)
		second, err := Remember(ctx, l, "k", time.Minute, load)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.EqualValues(t, 1, atomic.LoadInt32(&loads))
	})

	t.Run("Concurrent misses share one load", func(t *testing.T) {
		l := NewLoader(newMemoryCache(), nil)
		var loads int32
		release := make(chan struct{})
		load := func(context.Context) (int, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return 42, nil
		}

		var wg sync.WaitGroup
		results := make([]int, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := Remember(ctx, l, "answer", time.Minute, load)
				assert.NoError(t, err)
				results[i] = v
			}(i)
		}
		// 等所有调用进入 singleflight 后再放行
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.EqualValues(t, 1, atomic.LoadInt32(&loads))
		for _, v := range results {
			assert.Equal(t, 42, v)
		}
	})

	t.Run("Load errors are not cached", func(t *testing.T) {
		l := NewLoader(newMemoryCache(), nil)
		boom := errors.New("boom")
		_, err := Remember(ctx, l, "k", time.Minute, func(context.Context) (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)

		v, err := Remember(ctx, l, "k", time.Minute, func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("Forget drops the cached value", func(t *testing.T) {
		l := NewLoader(newMemoryCache(), nil)
		_, err := Remember(ctx, l, "k", time.Minute, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)

		l.Forget(ctx, "k")
		v, err := Remember(ctx, l, "k", time.Minute, func(context.Context) (int, error) { return 2, nil })
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("Zero ttl never caches", func(t *testing.T) {
		l := NewLoader(newMemoryCache(), nil)
		var loads int32
		load := func(context.Context) (int, error) { return int(atomic.AddInt32(&loads, 1)), nil }
		_, _ = Remember(ctx, l, "k", 0, load)
		v, _ := Remember(ctx, l, "k", 0, load)
		assert.Equal(t, 2, v)
	})
}
