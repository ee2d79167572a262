package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"datadiff/core/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(t *testing.T, calls *int32) LoadFunc {
	return func(ctx context.Context) (*dataset.Dataset, error) {
		atomic.AddInt32(calls, 1)
		return mustRows(t, "cached", []string{"id"}, []any{"1"}), nil
	}
}

func TestDatasetCache_Hit(t *testing.T) {
	var calls int32
	cache := NewDatasetCache(5 * time.Minute)

	first, err := cache.Get(context.Background(), "file:a.csv", countingLoader(t, &calls))
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), "file:a.csv", countingLoader(t, &calls))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate("file:a.csv")
	assert.Equal(t, 0, cache.Len())
}

func TestDatasetCache_Expiration(t *testing.T) {
	var calls int32
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewDatasetCache(time.Minute)
	cache.now = func() time.Time { return now }

	_, err := cache.Get(context.Background(), "k", countingLoader(t, &calls))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cache.Get(context.Background(), "k", countingLoader(t, &calls))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDatasetCache_ZeroTTLDisablesCaching(t *testing.T) {
	var calls int32
	cache := NewDatasetCache(0)

	for i := 0; i < 3; i++ {
		_, err := cache.Get(context.Background(), "k", countingLoader(t, &calls))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, cache.Len())
}

func TestDatasetCache_ErrorIsNotCached(t *testing.T) {
	cache := NewDatasetCache(time.Minute)
	boom := errors.New("load failed")

	_, err := cache.Get(context.Background(), "k", func(ctx context.Context) (*dataset.Dataset, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())
}

func TestDatasetCache_ConcurrentMissesShareLoad(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	cache := NewDatasetCache(time.Minute)

	loader := func(ctx context.Context) (*dataset.Dataset, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return mustRows(t, "cached", []string{"id"}), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "k", loader)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
