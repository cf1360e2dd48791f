package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lareferencia/lareferencia-core-lib-sub002/cache"
	"github.com/lareferencia/lareferencia-core-lib-sub002/oai"
)

func TestCacheLoadsOnceAndServesFromCache(t *testing.T) {
	var loads int32
	load := func(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error) {
		atomic.AddInt32(&loads, 1)
		return []oai.RecordValidation{{Identifier: "oai:x:1"}}, nil
	}
	c := cache.New(load, cache.Options{})

	for i := 0; i < 3; i++ {
		records, err := c.Get(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestCacheConcurrentMissesCollapseToOneLoad(t *testing.T) {
	var loads int32
	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			close(started)
			<-release
		}
		return []oai.RecordValidation{{Identifier: "oai:x:1"}}, nil
	}
	c := cache.New(load, cache.Options{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Get(context.Background(), 42)
		}()
	}
	<-started
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&loads))
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	var loads int32
	load := func(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error) {
		atomic.AddInt32(&loads, 1)
		return []oai.RecordValidation{{Identifier: "oai:x:1"}}, nil
	}
	c := cache.New(load, cache.Options{})

	_, err := c.Get(context.Background(), 1)
	require.NoError(t, err)
	c.Invalidate(1)
	_, err = c.Get(context.Background(), 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&loads))
}

func TestCacheMaxSnapshotsFloorIsFive(t *testing.T) {
	load := func(ctx context.Context, snapshotID int64) ([]oai.RecordValidation, error) {
		return []oai.RecordValidation{{Identifier: "oai:x:1"}}, nil
	}
	c := cache.New(load, cache.Options{MaxSnapshots: 1, TTL: time.Minute})
	for i := int64(0); i < 5; i++ {
		_, err := c.Get(context.Background(), i)
		require.NoError(t, err)
	}
	require.Equal(t, 5, c.Len()) // floor of 5 enforced even though MaxSnapshots: 1 was requested
}
