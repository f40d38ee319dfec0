package cloudflare

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ZoneName 取域名最后两级作为 zone, e.g. www.example.com -> example.com.
// Zones under multi-label public suffixes (example.co.uk) are not supported.
func ZoneName(domain string) (string, error) {
	domain = strings.TrimPrefix(domain, "@.")
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return "", errors.Errorf("invalid domain format: %s", domain)
	}
	return strings.Join(parts[len(parts)-2:], "."), nil
}

// ZoneKey scopes a zone name by account, zones of the same name may exist in several accounts.
func ZoneKey(zoneName, accountID string) string {
	if accountID == "" {
		return zoneName
	}
	return accountID + "/" + zoneName
}

// ZoneCache maps zone keys to zone ids. Entries are never evicted.
// It is shared by every cloudflare target of the process.
type ZoneCache struct {
	mu    sync.RWMutex
	zones map[string]string
	group singleflight.Group
}

func NewZoneCache() *ZoneCache {
	return &ZoneCache{zones: make(map[string]string)}
}

// Get returns a cached zone id without any lookup.
func (c *ZoneCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.zones[key]
	return id, ok
}

// Resolve returns the cached id of key, calling lookup on a miss.
// Concurrent misses for the same key share a single lookup.
// Failed lookups are not cached.
func (c *ZoneCache) Resolve(ctx context.Context, key string, lookup func(ctx context.Context) (string, error)) (string, error) {
	if id, ok := c.Get(key); ok {
		return id, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// 另一个调用方可能已经写入
		if id, ok := c.Get(key); ok {
			return id, nil
		}
		id, err := lookup(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.zones[key] = id
		c.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *ZoneCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.zones)
}
