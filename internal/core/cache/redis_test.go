package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	c.Prefix = "test:"
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadJSON_LoadsOnceThenHits(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	var calls int32
	load := func(context.Context) (*item, error) {
		atomic.AddInt32(&calls, 1)
		return &item{ID: 1, Name: "alice"}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "item:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, &item{ID: 1, Name: "alice"}, got)
	assert.True(t, mr.Exists("test:item:1"))
	assert.Equal(t, time.Minute, mr.TTL("test:item:1"))

	got, err = GetOrLoadJSON(c, ctx, "item:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSON_AbsentIsNotCached(t *testing.T) {
	c, mr := newCache(t)
	var calls int32
	load := func(context.Context) (*item, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}
	for i := 0; i < 2; i++ {
		got, err := GetOrLoadJSON(c, context.Background(), "item:9", time.Minute, load)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, mr.Exists("test:item:9"))
}

func TestGetOrLoad_ErrorPropagates(t *testing.T) {
	c, mr := newCache(t)
	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:k"))
}

func TestGetOrLoad_ConcurrentMissesShareLoad(t *testing.T) {
	c, _ := newCache(t)
	var calls int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte(`"v"`), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(context.Background(), "shared", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, `"v"`, string(b))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(10))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestGetOrLoad_RedisDownFallsBackToLoad(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()
	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(b))
	assert.Error(t, c.Ping(context.Background()))
}
