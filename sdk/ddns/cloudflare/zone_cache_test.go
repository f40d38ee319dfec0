package cloudflare

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneName(t *testing.T) {
	tests := map[string]string{
		"www.example.com":    "example.com",
		"a.b.c.example.com":  "example.com",
		"example.com":        "example.com",
		"@.example.com":      "example.com",
		"test.example.co.uk": "co.uk",
	}
	for domain, want := range tests {
		got, err := ZoneName(domain)
		require.NoError(t, err, domain)
		assert.Equal(t, want, got, domain)
	}

	_, err := ZoneName("localhost")
	assert.Error(t, err)
}

func TestZoneKey(t *testing.T) {
	assert.Equal(t, "example.com", ZoneKey("example.com", ""))
	assert.Equal(t, "acc1/example.com", ZoneKey("example.com", "acc1"))
}

func TestZoneCacheHitSkipsLookup(t *testing.T) {
	cache := NewZoneCache()
	var calls int32
	lookup := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "zoneId123", nil
	}

	for i := 0; i < 3; i++ {
		id, err := cache.Resolve(context.Background(), "example.com", lookup)
		require.NoError(t, err)
		assert.Equal(t, "zoneId123", id)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cache.Len())
}

func TestZoneCacheConcurrentMissesShareLookup(t *testing.T) {
	cache := NewZoneCache()
	var calls int32
	release := make(chan struct{})
	lookup := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "zoneId123", nil
	}

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := cache.Resolve(context.Background(), "example.com", lookup)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, id := range ids {
		assert.Equal(t, "zoneId123", id)
	}
}

func TestZoneCacheDoesNotStoreFailures(t *testing.T) {
	cache := NewZoneCache()
	_, err := cache.Resolve(context.Background(), "example.com", func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	id, err := cache.Resolve(context.Background(), "example.com", func(context.Context) (string, error) {
		return "zoneId123", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "zoneId123", id)
}
